package modal

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestHub_ShowActivateHide(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	activated := make(chan string, 2)
	h.Show(Dialog{
		Icon:    IconError,
		Message: "Error loading level 2\nnetwork down",
		Buttons: []Button{
			{Label: "Retry", OnActivate: func() { activated <- "Retry" }},
			{Label: "Cancel", OnActivate: func() { activated <- "Cancel" }},
		},
	})

	f := readFrame(t, conn)
	assert.Equal(t, FrameShow, f.Type)
	assert.Equal(t, IconError, f.Icon)
	assert.Equal(t, "Error loading level 2\nnetwork down", f.Message)
	assert.Equal(t, []string{"Retry", "Cancel"}, f.Buttons)

	require.NoError(t, conn.WriteJSON(Frame{Type: FrameActivate, Button: 1, Seq: f.Seq}))
	select {
	case label := <-activated:
		assert.Equal(t, "Cancel", label)
	case <-time.After(2 * time.Second):
		t.Fatal("button not activated")
	}

	h.Hide()
	f = readFrame(t, conn)
	assert.Equal(t, FrameHide, f.Type)
}

func TestHub_LateClientSeesCurrentDialog(t *testing.T) {
	h := NewHub()
	h.Show(Dialog{Icon: IconLoading, Message: "Loading resources...\n40%"})

	conn := dialHub(t, h)

	f := readFrame(t, conn)
	assert.Equal(t, FrameShow, f.Type)
	assert.Equal(t, "Loading resources...\n40%", f.Message)
	assert.Empty(t, f.Buttons)
}

func TestHub_Activate(t *testing.T) {
	h := NewHub()
	assert.False(t, h.Activate(0, 0), "nothing shown")

	var pressed int
	h.Show(Dialog{Buttons: []Button{{Label: "Retry", OnActivate: func() { pressed++ }}}})
	_, seq, ok := h.Current()
	require.True(t, ok)

	assert.False(t, h.Activate(1, 0), "out of range")
	assert.False(t, h.Activate(-1, 0), "negative index")
	assert.False(t, h.Activate(0, seq+1), "stale sequence")
	assert.True(t, h.Activate(0, seq))
	assert.True(t, h.Activate(0, 0))
	assert.Equal(t, 2, pressed)

	h.Hide()
	assert.False(t, h.Activate(0, 0))
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	h.Close()
	assert.Equal(t, 0, h.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
