package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/units"
)

func TestAttachAdminRoutes_Status(t *testing.T) {
	s, tb, clock := newTestSession(t, WithID("0123456789abcdef"))
	require.NoError(t, s.SetChannelEnabled(device.Depth, true))
	require.NoError(t, s.SetThresholdsPC(190, 2500))
	tb.QueuePixels(device.Depth, pattern(device.DepthWidth*device.DepthHeight, 1))
	s.DepthImage()
	s.DepthImage()

	mux := http.NewServeMux()
	s.AttachAdminRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/debug/depthsense", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "0123456789abcdef", st.ID)
	assert.True(t, st.Ready)
	assert.True(t, st.Alive)
	assert.Equal(t, device.MaxUsers, st.UserLimit)
	assert.Equal(t, units.Millimetres(190), st.LowThreshold)
	assert.Equal(t, units.Millimetres(2500), st.HighThreshold)
	assert.Equal(t, units.Millimetres(190), st.DeviceLowThreshold)
	assert.Equal(t, units.Millimetres(2500), st.DeviceHighThreshold)

	depth := st.Channels["depth"]
	assert.True(t, depth.Enabled)
	assert.Equal(t, uint64(1), depth.Loaded)
	assert.Equal(t, uint64(1), depth.Skipped)
	require.NotNil(t, depth.LastLoaded)
	assert.True(t, clock.Now().Equal(*depth.LastLoaded))
	assert.Nil(t, st.Channels["color"].LastLoaded)
	assert.Len(t, st.Channels, len(device.Channels())+1)
}

func TestAttachAdminRoutes_RejectsPost(t *testing.T) {
	s, _, _ := newTestSession(t)
	mux := http.NewServeMux()
	s.AttachAdminRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/debug/depthsense", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
