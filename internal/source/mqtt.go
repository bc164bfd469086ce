package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// EndMarker is the payload that ends an MQTT stream.
const EndMarker = "end"

// MQTTConfig is an MQTT input parsed from mqtt://[user:pass@]host[:port]/topic.
type MQTTConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

func ParseMQTT(raw string) (MQTTConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return MQTTConfig{}, err
	}
	topic := strings.TrimPrefix(u.Path, "/")
	if topic == "" {
		return MQTTConfig{}, fmt.Errorf("mqtt input %q has no topic", raw)
	}
	scheme := "tcp"
	port := "1883"
	if u.Scheme == "mqtts" {
		scheme, port = "ssl", "8883"
	}
	if u.Port() != "" {
		port = u.Port()
	}
	c := MQTTConfig{
		Broker: fmt.Sprintf("%s://%s:%s", scheme, u.Hostname(), port),
		Topic:  topic,
	}
	if u.User != nil {
		c.Username = u.User.Username()
		c.Password, _ = u.User.Password()
	}
	return c, nil
}

// MQTTSource turns messages of one topic into a line stream. Each payload
// holds one or more protocol lines.
type MQTTSource struct {
	client mqtt.Client
	topic  string
	pr     *io.PipeReader
	pw     *io.PipeWriter
}

func newMQTTSource(topic string) *MQTTSource {
	pr, pw := io.Pipe()
	return &MQTTSource{topic: topic, pr: pr, pw: pw}
}

func OpenMQTT(ctx context.Context, raw string) (*MQTTSource, error) {
	cfg, err := ParseMQTT(raw)
	if err != nil {
		return nil, err
	}
	mqtt.ERROR = log.New(os.Stderr, "[!] mqtt: ", 0)

	s := newMQTTSource(cfg.Topic)
	options := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(fmt.Sprintf("rviewer-%d", os.Getpid())).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOrderMatters(true).
		SetOnConnectHandler(s.handleOnConnect)
	s.client = mqtt.NewClient(options)

	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	fmt.Printf("[*] Подключено к %s, топик %s\n", cfg.Broker, cfg.Topic)

	go func() {
		<-ctx.Done()
		s.pw.CloseWithError(ctx.Err())
	}()
	return s, nil
}

func (s *MQTTSource) handleOnConnect(client mqtt.Client) {
	token := client.Subscribe(s.topic, 1, s.handleMessage)
	if token.Wait() && token.Error() != nil {
		s.pw.CloseWithError(fmt.Errorf("mqtt subscribe %s: %w", s.topic, token.Error()))
	}
}

func (s *MQTTSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	s.deliver(msg.Payload())
}

// deliver writes a payload to the stream, terminating it with a newline.
func (s *MQTTSource) deliver(payload []byte) {
	if string(bytes.TrimSpace(payload)) == EndMarker {
		s.pw.Close()
		return
	}
	if len(payload) == 0 || payload[len(payload)-1] != '\n' {
		payload = append(append([]byte(nil), payload...), '\n')
	}
	// После закрытия читателя запись вернет ошибку, сообщение теряется
	s.pw.Write(payload)
}

func (s *MQTTSource) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

func (s *MQTTSource) Close() error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Unsubscribe(s.topic).Wait()
		s.client.Disconnect(250)
	}
	s.pw.Close()
	return s.pr.Close()
}
