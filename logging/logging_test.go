package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"microtwit/config"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogLevel = "warn"

	logger, err := newLogger(cfg, &buf)
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}

	logger.Info("dropped")
	logger.WithField("tweet_id", 7).Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" {
		t.Errorf("Expected msg kept, got %v", entry["msg"])
	}
	if entry["tweet_id"] != float64(7) {
		t.Errorf("Expected tweet_id field, got %v", entry["tweet_id"])
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"

	if _, err := newLogger(cfg, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

func TestLogstashHook(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		received <- line
	}()

	cfg := config.Default()
	cfg.LogstashAddr = ln.Addr().String()

	logger, err := newLogger(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	logger.WithFields(logrus.Fields{"path": "/api/tweets"}).Info("shipped")

	select {
	case line := <-received:
		if !strings.Contains(line, `"type":"microtwit"`) || !strings.Contains(line, "shipped") {
			t.Errorf("Unexpected logstash payload: %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for logstash payload")
	}
}
