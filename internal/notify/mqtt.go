// Package notify pushes "your active playlist changed" hints to physical
// displays over MQTT. Delivery is best effort; the authoritative state is
// always what the device fetches from the API.
package notify

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

type Notifier struct {
	client mqtt.Client
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// NewNotifier connects to the broker. The paho client reconnects on its
// own after transient drops.
func NewNotifier(brokerURL, clientID string) (*Notifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Notifier{client: client}, nil
}

type playlistChanged struct {
	Event      string `json:"event"`
	PlaylistID int    `json:"playlist_id"`
}

// PlaylistChanged tells one display its active playlist changed. A nil
// Notifier is a disabled channel and a no-op.
func (n *Notifier) PlaylistChanged(displayID, playlistID int) {
	if n == nil {
		return
	}
	payload, _ := json.Marshal(playlistChanged{Event: "playlist_changed", PlaylistID: playlistID})
	topic := fmt.Sprintf("displays/%d/commands", displayID)
	token := n.client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		log.Warn().Err(err).Int("display_id", displayID).Str("topic", topic).
			Msg("failed to notify display")
		return
	}
	log.Debug().Int("display_id", displayID).Int("playlist_id", playlistID).
		Msg("display notified of playlist change")
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (n *Notifier) Close() {
	if n == nil {
		return
	}
	n.client.Disconnect(250)
}
