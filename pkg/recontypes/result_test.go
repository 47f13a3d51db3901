package recontypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScanResult(t *testing.T) {
	target, err := NewScanTarget("203.0.113.1", nil)
	require.NoError(t, err)

	result := NewScanResult(target)

	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, StatusPending, result.Status)
	assert.Empty(t, result.OpenPorts)
	assert.Empty(t, result.HTTPServices)
	assert.Empty(t, result.AdminDirectories)
	assert.NotNil(t, result.OpenPorts, "open_ports must encode as [] not null")
}

func TestScanResult_SetOpenPorts(t *testing.T) {
	target, _ := NewScanTarget("203.0.113.1", nil)
	result := NewScanResult(target)

	result.SetOpenPorts([]PortInfo{
		{Port: 443, State: PortStateClosed},
		{Port: 22},
		{Port: 0}, // invariant 1: dropped, out of range
		{Port: 65536},
		{Port: 22}, // invariant 2: duplicate collapses
	})

	assert.Equal(t, []int{22, 443}, portNumbers(result.OpenPorts))
	for _, p := range result.OpenPorts {
		assert.Equal(t, PortStateOpen, p.State)
	}
}

func TestScanResult_MergePortEnrichment(t *testing.T) {
	target, _ := NewScanTarget("203.0.113.1", nil)
	result := NewScanResult(target)
	result.SetOpenPorts([]PortInfo{{Port: 22}, {Port: 80}})

	result.MergePortEnrichment([]PortInfo{
		{Port: 22, State: PortStateOpen, Service: "ssh", Banner: "SSH-2.0-OpenSSH"},
		{Port: 9999, Service: "ignored"}, // not in OpenPorts, must be ignored
	})

	for _, p := range result.OpenPorts {
		if p.Port == 22 {
			assert.Equal(t, "ssh", p.Service)
		}
		if p.Port == 80 {
			assert.Empty(t, p.Service)
		}
	}
	assert.Len(t, result.OpenPorts, 2)
}

func TestScanResult_Complete(t *testing.T) {
	target, _ := NewScanTarget("203.0.113.1", nil)
	result := NewScanResult(target)

	time.Sleep(time.Millisecond)
	result.Complete(StatusCompleted, "")

	require.NotNil(t, result.EndTime)
	require.NotNil(t, result.Duration)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Greater(t, *result.Duration, time.Duration(0))
}

func TestScanResult_Complete_NeverRegressesFromCompleted(t *testing.T) {
	target, _ := NewScanTarget("203.0.113.1", nil)
	result := NewScanResult(target)

	result.Complete(StatusCompleted, "")
	firstEnd := result.EndTime

	result.Complete(StatusFailed, "should be ignored")

	assert.Equal(t, StatusCompleted, result.Status, "invariant 6: completed must never become failed")
	assert.Equal(t, firstEnd, result.EndTime)
}

func TestScanResult_AdminInterfaceCount(t *testing.T) {
	target, _ := NewScanTarget("203.0.113.1", nil)
	result := NewScanResult(target)

	result.AddAdminDirectory(DirectoryInfo{Path: "/admin", IsAdmin: true})
	result.AddAdminDirectory(DirectoryInfo{Path: "/robots.txt", IsAdmin: false})
	result.AddAdminDirectory(DirectoryInfo{Path: "/wp-admin", IsAdmin: true})

	assert.Equal(t, 2, result.AdminInterfaceCount())
}
