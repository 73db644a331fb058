// Package config builds the single configuration struct handed to every
// component at startup.
//
// Values are layered, later layers winning:
//  1. config.json5
//  2. config.local.json5
//  3. a .env file next to the binary's working directory
//  4. the process environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"llreminder/internal/chrono"
	"llreminder/lib/configutil"

	"github.com/joho/godotenv"
)

const (
	DefaultMarker  = "LearnedLeague"
	DefaultTimeout = 10 * time.Second
	DefaultCron    = "0 17 * * *"
	DefaultGroupMe = "https://api.groupme.com/v3/bots/post"
)

// Transports
const (
	TransportNone    = "none"
	TransportTwilio  = "twilio"
	TransportSNS     = "sns"
	TransportGroupMe = "groupme"
	TransportEmail   = "email"
)

var ErrUnknownTransport = errors.New("unknown notification transport")

type SiteConfig struct {
	Url string `json:"url"`
	// Marker is the exact text of the div that confirms the dashboard has
	// rendered.
	Marker        string `json:"marker"`
	LoginTimeout  string `json:"login_timeout"`
	MarkerTimeout string `json:"marker_timeout"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type BrowserConfig struct {
	Bin       string `json:"bin"`
	NoSandbox bool   `json:"no_sandbox"`
}

type TwilioConfig struct {
	AccountSid string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	From       string `json:"from"`
	To         string `json:"to"`
	// BaseUrl overrides the twilio api host, used by tests.
	BaseUrl string `json:"base_url"`
}

type SNSConfig struct {
	Region      string `json:"region"`
	PhoneNumber string `json:"phone_number"`
}

type GroupMeConfig struct {
	Url   string `json:"url"`
	BotId string `json:"bot_id"`
}

type EmailConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

type NotifyConfig struct {
	Transport string        `json:"transport"`
	Twilio    TwilioConfig  `json:"twilio"`
	SNS       SNSConfig     `json:"sns"`
	GroupMe   GroupMeConfig `json:"groupme"`
	Email     EmailConfig   `json:"email"`
	// RecordDir, when set, receives a transcript of every http exchange the
	// transport makes.
	RecordDir string `json:"record_dir"`
}

type ScheduleConfig struct {
	Cron string `json:"cron"`
	// Timezone is an IANA zone name, empty means the host's zone.
	Timezone string `json:"timezone"`
}

type Config struct {
	Site        SiteConfig     `json:"site"`
	Credentials Credentials    `json:"credentials"`
	Browser     BrowserConfig  `json:"browser"`
	Notify      NotifyConfig   `json:"notify"`
	Schedule    ScheduleConfig `json:"schedule"`
}

// Read layers the configuration sources and applies defaults, it does not
// validate. A missing config file is fine, the environment alone can carry
// a full configuration.
func Read(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return cfg, nil
}

// Load is Read followed by Validate.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(&c.Site.Url, "SITE_URL")
	set(&c.Site.Marker, "INNER_TEXT")
	set(&c.Credentials.Username, "USERNAME")
	set(&c.Credentials.Password, "PASSWORD")
	set(&c.Browser.Bin, "CHROME_BIN")
	set(&c.Notify.Transport, "NOTIFY_TRANSPORT")
	set(&c.Notify.Twilio.AccountSid, "TWILIO_ACCOUNT_SID")
	set(&c.Notify.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	set(&c.Notify.Twilio.From, "TWILIO_PHONE_NUMBER")
	set(&c.Notify.Twilio.To, "PHONE_NUMBER")
	set(&c.Notify.SNS.Region, "AWS_REGION")
	set(&c.Notify.SNS.PhoneNumber, "PHONE_NUMBER")
	set(&c.Notify.GroupMe.Url, "GROUPME_API_URL")
	set(&c.Notify.GroupMe.BotId, "GROUPME_BOT_ID")
}

func (c *Config) applyDefaults() {
	if c.Site.Marker == "" {
		c.Site.Marker = DefaultMarker
	}
	if c.Site.LoginTimeout == "" {
		c.Site.LoginTimeout = DefaultTimeout.String()
	}
	if c.Site.MarkerTimeout == "" {
		c.Site.MarkerTimeout = DefaultTimeout.String()
	}
	c.Notify.Transport = strings.ToLower(strings.TrimSpace(c.Notify.Transport))
	if c.Notify.Transport == "" {
		c.Notify.Transport = TransportNone
	}
	if c.Notify.GroupMe.Url == "" {
		c.Notify.GroupMe.Url = DefaultGroupMe
	}
	if c.Notify.Email.Port == 0 {
		c.Notify.Email.Port = 587
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultCron
	}
}

func parseTimeout(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}

// LoginWait is the bound on waiting for the login form.
func (c Config) LoginWait() time.Duration {
	d, err := parseTimeout("site.login_timeout", c.Site.LoginTimeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// MarkerWait is the bound on waiting for the marker element.
func (c Config) MarkerWait() time.Duration {
	d, err := parseTimeout("site.marker_timeout", c.Site.MarkerTimeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

func required(errlist *[]error, name, value string) {
	if strings.TrimSpace(value) == "" {
		*errlist = append(*errlist, fmt.Errorf("%s is required", name))
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errlist []error

	required(&errlist, "site.url (SITE_URL)", c.Site.Url)
	if c.Site.Url != "" {
		u, err := url.Parse(c.Site.Url)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errlist = append(errlist, fmt.Errorf("site.url %q is not an absolute url", c.Site.Url))
		}
	}
	required(&errlist, "site.marker (INNER_TEXT)", c.Site.Marker)
	required(&errlist, "credentials.username (USERNAME)", c.Credentials.Username)
	required(&errlist, "credentials.password (PASSWORD)", c.Credentials.Password)

	if _, err := parseTimeout("site.login_timeout", c.Site.LoginTimeout); err != nil {
		errlist = append(errlist, err)
	}
	if _, err := parseTimeout("site.marker_timeout", c.Site.MarkerTimeout); err != nil {
		errlist = append(errlist, err)
	}

	if err := chrono.ValidateSpec(c.Schedule.Cron); err != nil {
		errlist = append(errlist, fmt.Errorf("schedule.cron: %w", err))
	}
	if _, err := chrono.LoadLocation(c.Schedule.Timezone); err != nil {
		errlist = append(errlist, fmt.Errorf("schedule.timezone: %w", err))
	}

	n := c.Notify
	switch n.Transport {
	case TransportNone:
	case TransportTwilio:
		required(&errlist, "notify.twilio.account_sid (TWILIO_ACCOUNT_SID)", n.Twilio.AccountSid)
		required(&errlist, "notify.twilio.auth_token (TWILIO_AUTH_TOKEN)", n.Twilio.AuthToken)
		required(&errlist, "notify.twilio.from (TWILIO_PHONE_NUMBER)", n.Twilio.From)
		required(&errlist, "notify.twilio.to (PHONE_NUMBER)", n.Twilio.To)
	case TransportSNS:
		required(&errlist, "notify.sns.region (AWS_REGION)", n.SNS.Region)
		required(&errlist, "notify.sns.phone_number (PHONE_NUMBER)", n.SNS.PhoneNumber)
	case TransportGroupMe:
		required(&errlist, "notify.groupme.url (GROUPME_API_URL)", n.GroupMe.Url)
		required(&errlist, "notify.groupme.bot_id (GROUPME_BOT_ID)", n.GroupMe.BotId)
	case TransportEmail:
		required(&errlist, "notify.email.server", n.Email.Server)
		required(&errlist, "notify.email.email_address", n.Email.EmailAddress)
		if len(n.Email.To) == 0 {
			errlist = append(errlist, fmt.Errorf("notify.email.to needs at least one recipient"))
		}
	default:
		errlist = append(errlist, fmt.Errorf("%w: %q", ErrUnknownTransport, n.Transport))
	}

	return errors.Join(errlist...)
}
