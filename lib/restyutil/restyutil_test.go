package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"llreminder/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	ids      []string
	contents []string
}

func (m *memoryOutput) Write(id string, contents string) error {
	m.ids = append(m.ids, id)
	m.contents = append(m.contents, contents)
	return nil
}

func TestRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "session=abc")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer server.Close()

	out := &memoryOutput{}
	client := resty.New().SetBasicAuth("AC123", "secret-token")
	Record(client, out, &telemetry.Recorder{})

	_, err := client.R().SetFormData(map[string]string{"Body": "hello"}).Post(server.URL + "/messages")
	require.NoError(t, err)
	_, err = client.R().Get(server.URL + "/status")
	require.NoError(t, err)

	require.Len(t, out.contents, 2)
	require.NotEqual(t, out.ids[0], out.ids[1])

	first := out.contents[0]
	require.Contains(t, first, "POST "+server.URL+"/messages")
	require.Contains(t, first, "Body=hello")
	require.Contains(t, first, "201")
	require.Contains(t, first, `{"sid":"SM1"}`)
	require.Contains(t, first, "Authorization: <redacted>")
	require.Contains(t, first, "Set-Cookie: <redacted>")
	require.NotContains(t, first, "secret-token")
	require.NotContains(t, first, "session=abc")

	require.Contains(t, out.contents[1], "GET "+server.URL+"/status")
}

func TestFormatRequestBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Equal(t, "", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("Body=hello")), nil
	}
	require.Equal(t, "Body=hello", formatRequestBody(req))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "records")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	require.NoError(t, out.Write("20260101-170000-001", "exchange"))

	contents, err := os.ReadFile(filepath.Join(dir, "20260101-170000-001.txt"))
	require.NoError(t, err)
	require.Equal(t, "exchange", string(contents))
}
