package chrono

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"llreminder/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestValidateSpec(t *testing.T) {
	require.NoError(t, ValidateSpec("0 17 * * *"))
	require.NoError(t, ValidateSpec("@daily"))
	require.Error(t, ValidateSpec("0 17 * *"))
	require.Error(t, ValidateSpec("every day"))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	require.Equal(t, time.Local, loc)

	loc, err = LoadLocation("UTC")
	require.NoError(t, err)
	require.Equal(t, "UTC", loc.String())

	_, err = LoadLocation("Mars/Olympus_Mons")
	require.Error(t, err)
}

func TestStandardImpl(t *testing.T) {
	impl, err := NewStandardImpl("UTC")
	require.NoError(t, err)
	require.Equal(t, time.UTC.String(), impl.Now().Location().String())
	require.WithinDuration(t, time.Now(), impl.Now(), time.Minute)
}

func TestStandardCronSkipsOverlap(t *testing.T) {
	rec := &telemetry.Recorder{}
	c := NewStandardCron(rec, time.UTC)

	var runs atomic.Int32
	release := make(chan struct{})
	require.NoError(t, c.Cron("@every 1s", func() {
		runs.Add(1)
		<-release
	}))
	require.Error(t, c.Cron("not a spec", func() {}))
	require.True(t, c.Next().IsZero())

	c.Start()
	require.Eventually(t, func() bool { return !c.Next().IsZero() }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 50*time.Millisecond)
	// further ticks land while the first job is still blocked
	time.Sleep(2500 * time.Millisecond)
	require.Equal(t, int32(1), runs.Load())
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
}

func TestStandardCronRecovers(t *testing.T) {
	rec := &telemetry.Recorder{}
	c := NewStandardCron(rec, time.UTC)
	require.NoError(t, c.Cron("@every 1s", func() {
		panic(errors.New("boom"))
	}))
	c.Start()
	require.Eventually(t, func() bool { return len(rec.BrokenIDs()) > 0 }, 5*time.Second, 50*time.Millisecond)
	require.NoError(t, c.Stop(context.Background()))
	require.Equal(t, "cron", rec.BrokenIDs()[0])
}
