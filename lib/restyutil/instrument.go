package restyutil

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

type instrumentCtx struct {
	output    InstrumentOutput
	idcounter *uint64
}

var appTokenPattern = regexp.MustCompile(`\$\$app_token=[^&]*`)

// `output` can be nil, if it is, then the function is a no-op
func InstrumentClient(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}

	var idcounter uint64
	i := instrumentCtx{output: output, idcounter: &idcounter}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type messageIdKey struct{}

func (i instrumentCtx) onBeforeRequest(cli *resty.Client, req *resty.Request) error {
	messageId := strconv.FormatUint(atomic.AddUint64(i.idcounter, 1), 10)
	slog.Debug(
		"start request",
		"method", req.Method,
		"url", appTokenPattern.ReplaceAllString(req.URL, "$$$$app_token=REDACTED"),
		"message_id", messageId,
	)
	req.SetContext(context.WithValue(req.Context(), messageIdKey{}, messageId))
	return nil
}

func (i instrumentCtx) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	messageId, ok := res.Request.Context().Value(messageIdKey{}).(string)
	if !ok {
		return nil
	}
	contents := appTokenPattern.ReplaceAllString(formatHttpMessage(res), "$$$$app_token=REDACTED")
	i.output.Write(messageId, contents)
	return nil
}

func (i instrumentCtx) onError(req *resty.Request, err error) {
	messageId, ok := req.Context().Value(messageIdKey{}).(string)
	if !ok {
		return
	}
	contents := appTokenPattern.ReplaceAllString(
		"request failed: "+err.Error(),
		"$$$$app_token=REDACTED",
	)
	i.output.Write(messageId, contents)
}
