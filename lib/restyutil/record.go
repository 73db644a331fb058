// Package restyutil records the http exchanges made by a resty client, used
// to debug notification transports against the real apis.
package restyutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"llreminder/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string) error
}

const report_record = "restyutil.record"

// Record writes every completed exchange made through `client` to `output`.
// Failing to write is reported, it never fails the request.
func Record(client *resty.Client, output Output, tel telemetry.API) {
	prefix := time.Now().Format("20060102-150405")
	var counter uint64

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := fmt.Sprintf("%s-%03d", prefix, atomic.AddUint64(&counter, 1))
		err := output.Write(id, formatHttpMessage(res))
		if err != nil {
			tel.ReportWarning(report_record, err, id)
		}
		return nil
	})
}
