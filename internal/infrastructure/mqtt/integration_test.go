//go:build integration

package mqtt

import (
	"fmt"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Requires a broker at 127.0.0.1:1883:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...

// subscribeRaw opens a separate paho connection that watches topic and
// forwards "<topic> <payload>" lines. The core never subscribes, so the
// observer lives here.
func subscribeRaw(t *testing.T, clientID, topic string) <-chan string {
	t.Helper()

	cfg := testConfig()
	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker.Host, cfg.Broker.Port)).
		SetClientID(clientID)
	c := pahomqtt.NewClient(opts)
	if tok := c.Connect(); !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("observer connect: %v", tok.Error())
	}
	t.Cleanup(func() { c.Disconnect(100) })

	got := make(chan string, 8)
	tok := c.Subscribe(topic, 1, func(_ pahomqtt.Client, m pahomqtt.Message) {
		got <- m.Topic() + " " + string(m.Payload())
	})
	if !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		t.Fatalf("observer subscribe %s: %v", topic, tok.Error())
	}
	return got
}

func TestIntegration_PublishEvent(t *testing.T) {
	received := subscribeRaw(t, "smarthome-int-observer", "smarthome/device/+/event/+")

	cfg := testConfig()
	cfg.Broker.ClientID = "smarthome-int-roundtrip"
	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.PublishEvent(Topics{}.DeviceEvent(9, "motion"), []byte(`{"v":1}`)); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}

	select {
	case got := <-received:
		if got != `smarthome/device/9/event/motion {"v":1}` {
			t.Errorf("received %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestIntegration_RetainedStatus(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "smarthome-int-retained"

	pub, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer pub.Close()

	topic := Topics{}.DeviceStatus(77)
	if err := pub.PublishRetained(topic, []byte(`{"status":"on"}`)); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}

	got := subscribeRaw(t, "smarthome-int-retained-sub", topic)

	select {
	case msg := <-got:
		if msg != topic+` {"status":"on"}` {
			t.Errorf("message = %s", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retained message not delivered")
	}
}
