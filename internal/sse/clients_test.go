package sse

import "testing"

func TestClients(t *testing.T) {
	t.Run("broadcast reaches listeners", func(t *testing.T) {
		clients := NewClients()
		c := &Client{Msg: make(chan string, 1)}
		clients.Add(c)

		clients.Broadcast("ready")

		select {
		case msg := <-c.Msg:
			if msg != "ready" {
				t.Errorf("expected ready, got %s", msg)
			}
		default:
			t.Fatal("expected a buffered message")
		}
	})

	t.Run("slow clients are skipped, not blocked on", func(t *testing.T) {
		clients := NewClients()
		c := &Client{Msg: make(chan string)} // unbuffered, nobody reading
		clients.Add(c)

		done := make(chan struct{})
		go func() {
			clients.Broadcast("ready")
			close(done)
		}()

		<-done
	})

	t.Run("delete closes the channel", func(t *testing.T) {
		clients := NewClients()
		c := &Client{Msg: make(chan string)}
		clients.Add(c)
		clients.Delete(c)

		if _, open := <-c.Msg; open {
			t.Error("channel should be closed after delete")
		}

		// Broadcasting after delete must not panic on the closed channel.
		clients.Broadcast("ready")
	})
}
