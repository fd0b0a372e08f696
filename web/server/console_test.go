package server

import (
	"reflect"
	"testing"
	"time"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	// Create a channel to receive console messages
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-123", messageChan)

	// Trailing newlines are trimmed
	logger.Printf("%s\n", "Test log message")

	select {
	case msg := <-messageChan:
		if msg.Message != "Test log message" {
			t.Errorf("Expected message 'Test log message', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	// Create a small channel that will fill up
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("test-render-789", messageChan)

	// Further messages are dropped instead of blocking
	logger.Printf("Message 1")
	logger.Printf("Message 2")
	logger.Printf("Message 3")

	if got := drainConsole(messageChan); !reflect.DeepEqual(got, []string{"Message 1"}) {
		t.Errorf("Expected only the first message, got %v", got)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	// Test logger with nil channel (should not panic)
	logger := NewWebLogger("test-render-nil", nil)
	logger.Printf("Test message with nil channel\n")
}

func TestDrainConsole(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-drain", messageChan)

	logger.Printf("Rendering %s at %dx%d", "simple", 200, 100)
	logger.Printf("Done")

	expected := []string{"Rendering simple at 200x100", "Done"}
	if got := drainConsole(messageChan); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	// Draining an empty channel returns immediately
	if got := drainConsole(messageChan); len(got) != 0 {
		t.Errorf("Expected no messages, got %v", got)
	}
}
