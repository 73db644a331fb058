package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"llreminder/internal/config"
	"llreminder/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu       sync.Mutex
	method   string
	path     string
	user     string
	password string
	form     map[string]string
	body     map[string]string
}

func (c *capture) handler(status int, response string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.method = r.Method
		c.path = r.URL.Path
		c.user, c.password, _ = r.BasicAuth()
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		} else if err := r.ParseForm(); err == nil {
			c.form = map[string]string{}
			for k := range r.PostForm {
				c.form[k] = r.PostForm.Get(k)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}
}

func TestGroupMeSend(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler(http.StatusAccepted, ``))
	defer server.Close()

	n := NewGroupMe(config.GroupMeConfig{Url: server.URL + "/v3/bots/post", BotId: "bot-123"}, &telemetry.Recorder{})
	require.NoError(t, n.Send(context.Background(), MessageReminder))

	require.Equal(t, http.MethodPost, c.method)
	require.Equal(t, "/v3/bots/post", c.path)
	if diff := cmp.Diff(map[string]string{"text": MessageReminder, "bot_id": "bot-123"}, c.body); diff != "" {
		t.Fatalf("unexpected groupme payload (-want +got):\n%s", diff)
	}
}

func TestGroupMeSendError(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler(http.StatusBadRequest, `{"meta":{"code":400}}`))
	defer server.Close()

	n := NewGroupMe(config.GroupMeConfig{Url: server.URL, BotId: "bot-123"}, &telemetry.Recorder{})
	err := n.Send(context.Background(), MessageSubmitted)
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
}

func TestTwilioSend(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler(http.StatusCreated, `{"sid":"SM1","status":"queued"}`))
	defer server.Close()

	n := NewTwilio(config.TwilioConfig{
		AccountSid: "AC123",
		AuthToken:  "token",
		From:       "+15550000000",
		To:         "+15551111111",
		BaseUrl:    server.URL,
	}, &telemetry.Recorder{})
	require.NoError(t, n.Send(context.Background(), MessageReminder))

	require.Equal(t, http.MethodPost, c.method)
	require.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", c.path)
	require.Equal(t, "AC123", c.user)
	require.Equal(t, "token", c.password)
	if diff := cmp.Diff(map[string]string{
		"To":   "+15551111111",
		"From": "+15550000000",
		"Body": MessageReminder,
	}, c.form); diff != "" {
		t.Fatalf("unexpected twilio form (-want +got):\n%s", diff)
	}
}

func TestTwilioSendError(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler(http.StatusUnauthorized, `{"code":20003,"message":"Authenticate","more_info":"https://www.twilio.com/docs/errors/20003"}`))
	defer server.Close()

	n := NewTwilio(config.TwilioConfig{AccountSid: "AC123", AuthToken: "bad", BaseUrl: server.URL}, &telemetry.Recorder{})
	err := n.Send(context.Background(), MessageReminder)
	require.Error(t, err)
	require.Contains(t, err.Error(), "20003")
	require.Contains(t, err.Error(), "Authenticate")
}

func TestNewRecordsExchanges(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler(http.StatusAccepted, ``))
	defer server.Close()

	dir := t.TempDir()
	n, err := New(config.NotifyConfig{
		Transport: config.TransportGroupMe,
		GroupMe:   config.GroupMeConfig{Url: server.URL, BotId: "bot-123"},
		RecordDir: dir,
	}, &telemetry.Recorder{})
	require.NoError(t, err)
	require.NoError(t, n.Send(context.Background(), MessageSubmitted))

	entries, err := os.ReadDir(filepath.Join(dir, config.TransportGroupMe))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	contents, err := os.ReadFile(filepath.Join(dir, config.TransportGroupMe, entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(contents), "bot-123")
	require.Contains(t, string(contents), "202")
}
