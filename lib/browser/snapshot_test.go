package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form>
	<input name="username" type="text">
	<input name="password" type="password">
	<input name="csrf" type="hidden" value="tok">
	<input name="login" type="submit" value="Login">
</form>
<div style="display: none"><span class="secret">x</span></div>
<div>LearnedLeague</div>
<div class="no_sub" style="display:none">You have not submitted</div>
</body></html>`

func TestSnapshotWaits(t *testing.T) {
	ctx := context.Background()
	snap, err := NewSnapshotString(loginPage)
	require.NoError(t, err)

	_, err = snap.WaitVisible(ctx, ByName("username"), time.Second)
	require.NoError(t, err)

	_, err = snap.WaitVisible(ctx, ByName("csrf"), time.Second)
	require.ErrorIs(t, err, ErrTimeout)

	_, err = snap.WaitVisible(ctx, ByClass("secret"), time.Second)
	require.ErrorIs(t, err, ErrTimeout)

	_, err = snap.WaitPresent(ctx, ByClass("secret"), time.Second)
	require.NoError(t, err)

	_, err = snap.WaitPresent(ctx, ByText("div", "LearnedLeague"), time.Second)
	require.NoError(t, err)

	_, err = snap.WaitPresent(ctx, ByText("div", "Learned"), time.Second)
	require.ErrorIs(t, err, ErrTimeout)

	_, err = snap.Find(ctx, ByClass("missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotInteractions(t *testing.T) {
	ctx := context.Background()
	snap, err := NewSnapshotString(loginPage)
	require.NoError(t, err)

	username, err := snap.Find(ctx, ByName("username"))
	require.NoError(t, err)
	require.NoError(t, username.Input(ctx, "ali"))
	require.NoError(t, username.Input(ctx, "ce"))
	require.Equal(t, "alice", snap.Value(ByName("username")))

	submit, err := snap.Find(ctx, ByName("login"))
	require.NoError(t, err)
	require.NoError(t, submit.Click(ctx))
	require.Equal(t, []string{"name=login"}, snap.Clicks())

	status, err := snap.Find(ctx, ByClass("no_sub"))
	require.NoError(t, err)
	style, ok, err := status.Attribute(ctx, "style")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "display:none", style)

	_, ok, err = status.Attribute(ctx, "data-missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotRoutesAndClose(t *testing.T) {
	ctx := context.Background()
	snap, err := NewSnapshotString(`<div>first</div>`)
	require.NoError(t, err)
	snap.Route("https://example.com/", `<div>second</div>`)

	require.NoError(t, snap.Navigate(ctx, "https://unrouted.example.com/"))
	_, err = snap.Find(ctx, ByText("div", "first"))
	require.NoError(t, err)

	require.NoError(t, snap.Navigate(ctx, "https://example.com/"))
	_, err = snap.Find(ctx, ByText("div", "second"))
	require.NoError(t, err)
	require.Equal(t, []string{"https://unrouted.example.com/", "https://example.com/"}, snap.Visited())

	require.NoError(t, snap.Close())
	require.True(t, snap.Closed())
	_, err = snap.Find(ctx, ByText("div", "second"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, snap.Navigate(ctx, "https://example.com/"), ErrClosed)
}

func TestSnapshotRouteClick(t *testing.T) {
	ctx := context.Background()
	snap, err := NewSnapshotString(loginPage)
	require.NoError(t, err)
	snap.RouteClick(ByName("login"), `<div>dashboard</div>`)

	username, err := snap.Find(ctx, ByName("username"))
	require.NoError(t, err)
	require.NoError(t, username.Click(ctx))
	_, err = snap.Find(ctx, ByName("login"))
	require.NoError(t, err)

	submit, err := snap.Find(ctx, ByName("login"))
	require.NoError(t, err)
	require.NoError(t, submit.Click(ctx))
	_, err = snap.Find(ctx, ByText("div", "dashboard"))
	require.NoError(t, err)
	_, err = snap.Find(ctx, ByName("login"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(loginPage), 0600))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	_, err = snap.Find(context.Background(), ByName("password"))
	require.NoError(t, err)

	_, err = LoadSnapshot(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}
