package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/monocle-dev/planboard/internal/logging"
	"github.com/monocle-dev/planboard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Footer      struct {
		Text string `json:"text"`
	} `json:"footer"`
	Timestamp string `json:"timestamp"`
}

type discordMessage struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []slackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type slackMessage struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

const (
	colorCreated = 0x3498DB
	colorDone    = 0x2ECC71
	colorChanged = 0xF39C12
	colorDeleted = 0xE74C3C

	botName = "Planboard"
)

// TaskEvent describes something that happened to a task.
type TaskEvent struct {
	Trigger        string // one of the models.Trigger* values
	Project        models.Project
	Task           models.Task
	Actor          string
	PreviousStatus models.TaskStatus
	At             time.Time
}

type RuleSource interface {
	ActiveNotificationRules(ctx context.Context, projectID uint, trigger string) ([]models.NotificationRule, error)
}

// Notifier posts task events to the Slack and Discord webhooks configured
// on a project. Delivery is asynchronous and best effort; a run of failures
// opens the breaker and further posts are dropped until it half-opens.
type Notifier struct {
	rules   RuleSource
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(rules RuleSource, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "webhooks",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Warnf("Circuit breaker %q changed from %s to %s", name, from, to)
		},
	})

	return &Notifier{
		rules:   rules,
		client:  publicOnlyClient(timeout),
		breaker: breaker,
		timeout: timeout,
	}
}

// Notify schedules delivery of event and returns immediately. A nil
// Notifier drops the event.
func (n *Notifier) Notify(event TaskEvent) {
	if n == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.dispatch(event)
	}()
}

// Wait blocks until every scheduled delivery has finished.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) dispatch(event TaskEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	log := logging.Logger.WithFields(logrus.Fields{
		"project_id": event.Project.ID,
		"task_id":    event.Task.ID,
		"trigger":    event.Trigger,
	})

	rules, err := n.rules.ActiveNotificationRules(ctx, event.Project.ID, event.Trigger)
	if err != nil {
		log.WithError(err).Error("Failed to load notification rules")
		return
	}

	for _, rule := range rules {
		if err := n.deliver(ctx, rule, event); err != nil {
			log.WithError(err).WithField("rule_id", rule.ID).Warn("Webhook delivery failed")
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, rule models.NotificationRule, event TaskEvent) error {
	var cfg models.WebhookConfig
	if err := json.Unmarshal(rule.Config, &cfg); err != nil || cfg.URL == "" {
		return fmt.Errorf("rule %d has no usable webhook url", rule.ID)
	}

	var payload interface{}
	switch rule.Channel {
	case models.ChannelSlack:
		payload = slackPayload(event)
	case models.ChannelDiscord:
		payload = discordPayload(event)
	default:
		return fmt.Errorf("unsupported channel %q", rule.Channel)
	}

	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.post(ctx, cfg.URL, payload)
	})
	return err
}

func (n *Notifier) post(ctx context.Context, webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func headline(event TaskEvent) (string, int, string) {
	switch event.Trigger {
	case models.TriggerTaskCreated:
		return "Task created", colorCreated, "#3498DB"
	case models.TriggerTaskDeleted:
		return "Task deleted", colorDeleted, "danger"
	default:
		if event.Task.Status == models.TaskDone {
			return "Task completed", colorDone, "good"
		}
		return "Task status changed", colorChanged, "warning"
	}
}

func statusText(event TaskEvent) string {
	if event.Trigger == models.TriggerTaskStatusChanged && event.PreviousStatus != "" {
		return fmt.Sprintf("%s → %s", event.PreviousStatus, event.Task.Status)
	}
	return string(event.Task.Status)
}

func discordPayload(event TaskEvent) discordMessage {
	title, color, _ := headline(event)

	embed := discordEmbed{
		Title:       fmt.Sprintf("**%s**", title),
		Description: fmt.Sprintf("**%s** in project **%s**", event.Task.Title, event.Project.Name),
		Color:       color,
		Fields: []discordField{
			{Name: "Status", Value: statusText(event), Inline: true},
			{Name: "Assignee", Value: event.Task.AssignedUser.Name, Inline: true},
			{Name: "By", Value: event.Actor, Inline: true},
		},
		Timestamp: event.At.UTC().Format(time.RFC3339),
	}
	embed.Footer.Text = fmt.Sprintf("Project: %s | Planboard", event.Project.Name)

	return discordMessage{Username: botName, Embeds: []discordEmbed{embed}}
}

func slackPayload(event TaskEvent) slackMessage {
	title, _, color := headline(event)

	return slackMessage{
		Username: botName,
		Text:     fmt.Sprintf("*%s*", title),
		Attachments: []slackAttachment{{
			Color: color,
			Title: event.Task.Title,
			Text:  event.Task.Description,
			Fields: []slackField{
				{Title: "Status", Value: statusText(event), Short: true},
				{Title: "Assignee", Value: event.Task.AssignedUser.Name, Short: true},
				{Title: "By", Value: event.Actor, Short: true},
			},
			Footer:    fmt.Sprintf("Project: %s", event.Project.Name),
			Timestamp: event.At.Unix(),
		}},
	}
}
