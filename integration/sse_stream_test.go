package integration

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pagebound/inkdesk/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseEvent is one parsed server-sent event.
type sseEvent struct {
	Name string
	Data string
}

// readEvents parses the SSE stream into a channel until the body closes.
func readEvents(body *bufio.Reader, out chan<- sseEvent) {
	var ev sseEvent
	for {
		line, err := body.ReadString('\n')
		if err != nil {
			close(out)
			return
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.Data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.Name != "":
			out <- ev
			ev = sseEvent{}
		}
	}
}

func waitEvent(t *testing.T, events <-chan sseEvent, name string) sseEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("stream closed while waiting for %q", name)
			}
			if ev.Name == name {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q event", name)
		}
	}
}

// An open SSE stream must deliver the writer's own unlocks and filter
// out everyone else's.
func TestSSEStreamsOwnUnlocks(t *testing.T) {
	ts := NewTestServer(t)
	writer := ts.Login(t, "streamer")
	rival := ts.Login(t, "rival")

	writerProject := writer.CreateProject("Streamed Book")
	rivalProject := rival.CreateProject("Rival Book")

	// No client timeout: the stream stays open for the whole test.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/sse?token="+writer.Token(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := make(chan sseEvent, 16)
	go readEvents(bufio.NewReader(resp.Body), events)

	waitEvent(t, events, "connected")

	// The rival's unlock is published first; it must never reach this
	// writer's stream.
	rival.MustDo(http.MethodPost, "/api/achievements/unlock",
		map[string]interface{}{"achievement_id": 16, "project_id": rivalProject, "progress": 1},
		http.StatusOK, nil)
	writer.MustDo(http.MethodPost, "/api/achievements/unlock",
		map[string]interface{}{"achievement_id": 5, "project_id": writerProject, "progress": 1},
		http.StatusOK, nil)

	// The first unlock on the stream is the writer's own, not the
	// rival's earlier one.
	ev := waitEvent(t, events, "unlock")
	var payload notify.Event
	require.NoError(t, json.Unmarshal([]byte(ev.Data), &payload))
	assert.Equal(t, int64(5), payload.AchievementID)
	assert.Equal(t, "Chapter One", payload.Name)
	assert.Equal(t, writerProject, payload.ProjectID)
}

func TestSSERejectsBadToken(t *testing.T) {
	ts := NewTestServer(t)

	resp, err := http.Get(ts.URL + "/sse")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/sse?token=not-a-jwt")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
