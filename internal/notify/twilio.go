package notify

import (
	"context"
	"fmt"
	"time"

	"llreminder/internal/config"
	"llreminder/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const twilioBaseUrl = "https://api.twilio.com"

// Twilio sends an sms through the twilio messages api.
type Twilio struct {
	http *resty.Client
	cfg  config.TwilioConfig
	tel  telemetry.API
}

type twilioMessage struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

func NewTwilio(cfg config.TwilioConfig, tel telemetry.API) Twilio {
	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = twilioBaseUrl
	}

	tel = telemetry.NewScopedAPI("twilio", tel)
	client := resty.New().
		SetBaseURL(baseUrl).
		SetBasicAuth(cfg.AccountSid, cfg.AuthToken).
		SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "llreminder.notify.twilio", tel)

	return Twilio{http: client, cfg: cfg, tel: tel}
}

func (Twilio) Name() string {
	return config.TransportTwilio
}

func (t Twilio) Send(ctx context.Context, message string) error {
	var result twilioMessage
	var apiErr twilioError

	res, err := t.http.R().
		SetContext(ctx).
		SetPathParam("sid", t.cfg.AccountSid).
		SetFormData(map[string]string{
			"To":   t.cfg.To,
			"From": t.cfg.From,
			"Body": message,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		return fmt.Errorf("twilio: send message: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("twilio: %s: %d %s", res.Status(), apiErr.Code, apiErr.Message)
	}

	t.tel.ReportDebug("message sent", result.Sid, result.Status)
	return nil
}
