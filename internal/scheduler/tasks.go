package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadSync = "leads.sync"

const TaskLeadClassify = "leads.classify"

const TaskTokenRefresh = "highlevel.token.refresh"

type LeadSyncPayload struct {
	UserID string `json:"userId"`
}

type LeadClassifyPayload struct {
	UserID     string `json:"userId"`
	CampaignID string `json:"campaignId"`
}

// TokenRefreshPayload carries the refresh horizon in minutes. Connections
// whose access token expires within the horizon are rotated.
type TokenRefreshPayload struct {
	HorizonMinutes int `json:"horizonMinutes"`
}

func NewLeadSyncTask(payload LeadSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadSync, data), nil
}

func ParseLeadSyncPayload(task *asynq.Task) (LeadSyncPayload, error) {
	var payload LeadSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadSyncPayload{}, err
	}
	return payload, nil
}

func NewLeadClassifyTask(payload LeadClassifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadClassify, data), nil
}

func ParseLeadClassifyPayload(task *asynq.Task) (LeadClassifyPayload, error) {
	var payload LeadClassifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadClassifyPayload{}, err
	}
	return payload, nil
}

func NewTokenRefreshTask(payload TokenRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTokenRefresh, data), nil
}

func ParseTokenRefreshPayload(task *asynq.Task) (TokenRefreshPayload, error) {
	var payload TokenRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TokenRefreshPayload{}, err
	}
	return payload, nil
}
