package store

import (
	"context"
	"errors"
	"testing"

	"github.com/monocle-dev/planboard/internal/apperror"
	"github.com/monocle-dev/planboard/internal/models"
	"gorm.io/datatypes"
)

func TestNotificationRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "Alice", "a@x.com")
	project := mustProject(t, s, alice, "Launch")

	created := models.NotificationRule{
		ProjectID:   project.ID,
		TriggerType: models.TriggerTaskCreated,
		Channel:     models.ChannelSlack,
		IsActive:    true,
		Config:      datatypes.JSON(`{"url":"https://hooks.slack.test/a"}`),
	}
	changed := models.NotificationRule{
		ProjectID:   project.ID,
		TriggerType: models.TriggerTaskStatusChanged,
		Channel:     models.ChannelDiscord,
		IsActive:    true,
		Config:      datatypes.JSON(`{"url":"https://discord.test/b"}`),
	}
	for _, rule := range []*models.NotificationRule{&created, &changed} {
		if err := s.CreateNotificationRule(ctx, rule); err != nil {
			t.Fatalf("CreateNotificationRule: %v", err)
		}
	}

	rules, err := s.ActiveNotificationRules(ctx, project.ID, models.TriggerTaskCreated)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].ID != created.ID {
		t.Fatalf("active rules = %+v", rules)
	}

	if err := s.DeleteNotificationRule(ctx, project.ID, created.ID); err != nil {
		t.Fatalf("DeleteNotificationRule: %v", err)
	}
	if err := s.DeleteNotificationRule(ctx, project.ID, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	// A rule cannot be removed through another project's id.
	if err := s.DeleteNotificationRule(ctx, project.ID+1, changed.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	all, err := s.ListNotificationRules(ctx, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != changed.ID {
		t.Fatalf("remaining rules = %+v", all)
	}
}

func TestCreateInactiveNotificationRule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "Alice", "a@x.com")
	project := mustProject(t, s, alice, "Launch")

	rule := models.NotificationRule{
		ProjectID:   project.ID,
		TriggerType: models.TriggerTaskDeleted,
		Channel:     models.ChannelSlack,
		Config:      datatypes.JSON(`{"url":"https://hooks.slack.test/c"}`),
	}
	if err := s.CreateNotificationRule(ctx, &rule); err != nil {
		t.Fatal(err)
	}

	active, err := s.ActiveNotificationRules(ctx, project.ID, models.TriggerTaskDeleted)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("inactive rule was returned as active: %+v", active)
	}

	all, err := s.ListNotificationRules(ctx, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].IsActive {
		t.Fatalf("rules = %+v", all)
	}
}
