// Package mqtt publishes every reading to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chrissnell/aqimonitor/internal/controllers"
	"github.com/chrissnell/aqimonitor/internal/types"
	"github.com/chrissnell/aqimonitor/pkg/config"
	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// ReadingSubscriber hands out a channel of new readings
type ReadingSubscriber interface {
	Subscribe(buf int) <-chan types.Reading
}

// Controller represents the MQTT publisher controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	mqttConfig config.MQTTData
	topic      string
	client     paho.Client
	readings   <-chan types.Reading
	logger     *zap.SugaredLogger
}

// NewController creates a new MQTT controller. The broker connection is
// made when the controller starts.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, mc config.MQTTData, source ReadingSubscriber, logger *zap.SugaredLogger) (*Controller, error) {
	if mc.Broker == "" {
		return nil, fmt.Errorf("mqtt controller requires a broker")
	}
	if mc.TopicPrefix == "" {
		mc.TopicPrefix = config.DefaultTopicPrefix
	}

	c := &Controller{
		ctx:        ctx,
		wg:         wg,
		mqttConfig: mc,
		topic:      Topic(mc.TopicPrefix, cfg.Monitor.StationName),
		readings:   source.Subscribe(10),
		logger:     logger.Named("mqtt"),
	}
	c.client = paho.NewClient(c.clientOptions())

	return c, nil
}

func (c *Controller) clientOptions() *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(c.mqttConfig.Broker).
		SetClientID(c.mqttConfig.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(time.Minute).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(paho.Client) {
			c.logger.Infof("connected to MQTT broker %s", c.mqttConfig.Broker)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.logger.Warnf("lost connection to MQTT broker: %v", err)
		})

	if c.mqttConfig.Username != "" {
		opts.SetUsername(c.mqttConfig.Username)
		opts.SetPassword(c.mqttConfig.Password)
	}

	return opts
}

// Topic returns the state topic for a station. MQTT wildcard and separator
// characters in the station name are replaced.
func Topic(prefix, station string) string {
	clean := strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_").Replace(station)
	return fmt.Sprintf("%s/%s/state", strings.TrimSuffix(prefix, "/"), clean)
}

// StartController connects to the broker and starts publishing
func (c *Controller) StartController() error {
	c.logger.Infof("Starting MQTT controller, publishing to %s...", c.topic)

	// With connect retry enabled this only returns an error for bad options;
	// an unreachable broker keeps retrying in the background.
	token := c.client.Connect()
	if token.WaitTimeout(connectTimeout) && token.Error() != nil {
		return fmt.Errorf("error connecting to MQTT broker %s: %w", c.mqttConfig.Broker, token.Error())
	}

	c.wg.Add(1)
	go c.run()

	return nil
}

func (c *Controller) run() {
	defer c.wg.Done()
	defer c.client.Disconnect(250)

	for {
		select {
		case r, ok := <-c.readings:
			if !ok {
				return
			}
			if err := c.publish(r); err != nil {
				c.logger.Warnf("error publishing reading: %v", err)
			}
		case <-c.ctx.Done():
			c.logger.Info("cancellation request received, stopping MQTT controller")
			return
		}
	}
}

func (c *Controller) publish(r types.Reading) error {
	payload, err := json.Marshal(controllers.NewState(r))
	if err != nil {
		return fmt.Errorf("error marshalling reading: %w", err)
	}

	token := c.client.Publish(c.topic, byte(c.mqttConfig.QoS), c.mqttConfig.Retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", c.topic)
	}
	return token.Error()
}
