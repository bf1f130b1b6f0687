package main

import (
	"context"
	"pdcmap-backend/cmd/dataprep/commands"
	"pdcmap-backend/lib/serviceutil"
	"pdcmap-backend/lib/telemetry"
)

func main() {
	// Ctrl+C cancels the context and with it any in-flight fetch
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)
	telemetry.SetupFromEnv(ctx, "dataprep-cli")
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
