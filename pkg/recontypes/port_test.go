package recontypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortPortInfos(t *testing.T) {
	ports := []PortInfo{
		{Port: 443}, {Port: 22}, {Port: 80},
	}
	SortPortInfos(ports)
	assert.Equal(t, []int{22, 80, 443}, portNumbers(ports))
}

func TestDedupePortInfos(t *testing.T) {
	ports := []PortInfo{
		{Port: 80, Service: "preset"},
		{Port: 22},
		{Port: 80, Service: "full-sweep"},
	}
	deduped := DedupePortInfos(ports)

	assert.Equal(t, []int{22, 80}, portNumbers(deduped))
	for _, p := range deduped {
		if p.Port == 80 {
			assert.Equal(t, "full-sweep", p.Service, "later entry should win on duplicate port")
		}
	}
}

func TestNewOpenPort(t *testing.T) {
	p := NewOpenPort(8080)
	assert.Equal(t, 8080, p.Port)
	assert.Equal(t, PortStateOpen, p.State)
	assert.Equal(t, ProtocolTCP, p.Protocol)
}

func portNumbers(s []PortInfo) []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Port
	}
	return out
}
