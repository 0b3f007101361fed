package webhook

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	facore "github.com/xhn-ccc/fat-analysis-tool"
	"github.com/xhn-ccc/fat-analysis-tool/pkg/models"
)

func testItem() models.WebhookItem {
	return models.WebhookItem{
		RequestID: "req-1",
		Result: facore.SampleResult{
			SampleID:    "s1",
			Calibration: facore.CalibrationResult{AnchorFound: true, Offset: 0.3},
			Compounds: map[string]facore.CompoundStat{
				"C14:0": {TotalArea: 100, Percentage: 100},
			},
			Order: []string{"C14:0"},
		},
		Outcome: facore.Outcome{SampleID: "s1", Status: facore.StatusOK},
	}
}

func TestClientSend(t *testing.T) {
	var got models.WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, true)
	require.NoError(t, client.Send(testItem()))

	assert.Equal(t, "req-1", got.ID)
	assert.Equal(t, "s1", got.SampleID)
	assert.True(t, got.AnchorFound)
	assert.Equal(t, 0.3, got.Offset)
	assert.Equal(t, 100.0, got.Compounds["C14:0"].Percentage)
}

func TestClientSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, true)
	assert.Error(t, client.Send(testItem()))
}

func TestSanitizeFloat(t *testing.T) {
	assert.Zero(t, sanitizeFloat(math.NaN()))
	assert.Zero(t, sanitizeFloat(math.Inf(1)))
	assert.Equal(t, 1.5, sanitizeFloat(1.5))
}
