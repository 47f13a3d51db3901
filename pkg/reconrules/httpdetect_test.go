package reconrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPCandidateScore_ServiceLabelAlone(t *testing.T) {
	score := HTTPCandidateScore("http", "", 80)
	assert.GreaterOrEqual(t, score, CandidateThreshold)
}

func TestHTTPCandidateScore_BannerOnly(t *testing.T) {
	score := HTTPCandidateScore("", "HTTP/1.1 200 OK\r\nServer: nginx\r\n", 8080)
	assert.GreaterOrEqual(t, score, CandidateThreshold)
}

func TestHTTPCandidateScore_UnrelatedService(t *testing.T) {
	score := HTTPCandidateScore("ssh", "SSH-2.0-OpenSSH", 22)
	assert.Less(t, score, CandidateThreshold)
}

func TestHTTPCandidateScore_NonStandardPortPlusBanner(t *testing.T) {
	score := HTTPCandidateScore("", "HTTP/1.1 200 OK", 8081)
	assert.GreaterOrEqual(t, score, CandidateThreshold)
}

func TestAdditionalHTTPCandidatePorts_ContainsKnownPorts(t *testing.T) {
	for _, p := range []int{3000, 4000, 5000, 8000, 8081, 8082, 9000, 9090} {
		_, ok := AdditionalHTTPCandidatePorts[p]
		assert.True(t, ok, "expected %d to be a default HTTP candidate port", p)
	}
}
