package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/room/v1/Room/get_info", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestRoom_Streaming(t *testing.T) {
	srv := newRoomServer(t, `{"code":0,"data":{"live_status":1,"online":12345,"attention":678,"keyframe":"https://i0.example/key.jpg","user_cover":"","area_name":"虚拟主播","description":"多多关照~","title":"初见!新人第一次直播"}}`)
	defer srv.Close()

	buf := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"room", "92613", "--api-base", srv.URL})

	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "直播中")
	assert.Contains(t, out, "链接:https://live.bilibili.com/92613")
	assert.Contains(t, out, "分区:虚拟主播")
	assert.Contains(t, out, "标题:初见!新人第一次直播")
	assert.Contains(t, out, "热度:12345, 关注:678")
}

func TestRoom_Offline(t *testing.T) {
	srv := newRoomServer(t, `{"code":0,"data":{"live_status":0,"online":0,"attention":678,"title":"休息中"}}`)
	defer srv.Close()

	buf := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"room", "92613", "--api-base", srv.URL})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "不在直播")
}

func TestRoom_DoesNotExist(t *testing.T) {
	srv := newRoomServer(t, `{"code":1,"data":null}`)
	defer srv.Close()

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"room", "404404", "--api-base", srv.URL})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRoom_RejectsNonNumericID(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"room", "not-a-room"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoom_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"room", "92613", "--api-base", srv.URL})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
