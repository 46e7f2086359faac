// Package events 把中心容量变化广播到 MQTT（政府看板 / 现场大屏订阅用）。
// 发布失败只记日志，绝不把错误传回数据写路径。
package events

import (
	"encoding/json"
	"fmt"

	"relief-data/internal/config"
	"relief-data/internal/domain"
	"relief-data/internal/wire"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTPublisher service.CenterPublisher 的 MQTT 实现
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
	qos         byte
	logger      *zap.Logger
}

// NewMQTTPublisher 连接 broker；连接失败返回错误，由调用方决定是否降级为不广播
func NewMQTTPublisher(cfg *config.MQTTConfig, logger *zap.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		qos:         cfg.QoS,
		logger:      logger,
	}, nil
}

// PublishCenter 把同步后的中心状态发到 <prefix>/<center_id>（retained，
// 新订阅的看板立即拿到最后已知状态）
func (p *MQTTPublisher) PublishCenter(center domain.RescueCenter) {
	payload, err := json.Marshal(wire.FromCenter(center))
	if err != nil {
		p.logger.Error("Failed to encode center event", zap.String("center_id", center.ID), zap.Error(err))
		return
	}

	topic := p.topicPrefix + "/" + center.ID
	token := p.client.Publish(topic, p.qos, true, payload)
	token.Wait()
	if token.Error() != nil {
		p.logger.Warn("Failed to publish center event",
			zap.String("topic", topic),
			zap.Error(token.Error()),
		)
	}
}

// Close 断开 broker 连接
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250) // 250ms等待时间
}
