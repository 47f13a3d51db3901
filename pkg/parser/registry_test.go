package parser

import (
	"testing"
)

func TestHTTPBannerParse(t *testing.T) {
	banner := "HTTP/1.1 200 OK\r\nServer: nginx/1.18.0\r\nContent-Type: text/html\r\n\r\n"
	info := Dispatch(banner)

	if info == nil {
		t.Fatal("Expected ServiceInfo, got nil")
	}
	if info.Name != "http" {
		t.Errorf("Expected name 'http', got %s", info.Name)
	}
	if info.Version != "nginx/1.18.0" {
		t.Errorf("Expected version 'nginx/1.18.0', got %s", info.Version)
	}
}

func TestDispatch_NoMatchReturnsNil(t *testing.T) {
	if info := Dispatch("completely unrecognized noise"); info != nil {
		t.Fatalf("expected nil, got %+v", info)
	}
}
