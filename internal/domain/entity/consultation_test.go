package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConsultation_StatusHelpers(t *testing.T) {
	cases := []struct {
		status   ConsultationStatus
		isActive bool
	}{
		{ConsultationStatusPending, true},
		{ConsultationStatusAccepted, true},
		{ConsultationStatusRejected, false},
		{ConsultationStatusCompleted, false},
	}
	for _, tc := range cases {
		c := &Consultation{Status: tc.status}
		assert.Equal(t, tc.isActive, c.IsActive(), "status %s", tc.status)
	}
}

func TestConsultation_ChatIsOpen(t *testing.T) {
	cases := []struct {
		name      string
		status    ConsultationStatus
		chatState ChatState
		open      bool
	}{
		{"pending has no chat", ConsultationStatusPending, ChatStateNotStarted, false},
		{"accepted opens the chat", ConsultationStatusAccepted, ChatStateNotStarted, true},
		{"started chat stays open", ConsultationStatusAccepted, ChatStateActive, true},
		{"ended chat is closed", ConsultationStatusCompleted, ChatStateEnded, false},
		{"rejected never opens", ConsultationStatusRejected, ChatStateNotStarted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Consultation{Status: tc.status, ChatState: tc.chatState}
			assert.Equal(t, tc.open, c.ChatIsOpen())
		})
	}
}

func TestConsultation_IsAssignedDoctor(t *testing.T) {
	doctorID := uuid.New()

	unassigned := &Consultation{}
	assert.False(t, unassigned.IsAssignedDoctor(doctorID))

	assigned := &Consultation{AcceptedByDoctorID: &doctorID}
	assert.True(t, assigned.IsAssignedDoctor(doctorID))
	assert.False(t, assigned.IsAssignedDoctor(uuid.New()))
}

func TestChatMessage_HasAttachment(t *testing.T) {
	url := "https://files.example.com/scan.png"

	plain := &ChatMessage{Content: "hello"}
	assert.False(t, plain.HasAttachment())

	withFile := &ChatMessage{FileURL: &url}
	assert.True(t, withFile.HasAttachment())
}
