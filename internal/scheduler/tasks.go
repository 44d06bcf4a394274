package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskDelayedAssignment = "leads.assign.delayed"

const TaskColdLeadReshuffle = "rotation.reshuffle"

type DelayedAssignmentPayload struct {
	LeadIDs  []string `json:"leadIds"`
	Assignee string   `json:"assignee"`
}

type ColdLeadReshufflePayload struct{}

func NewDelayedAssignmentTask(payload DelayedAssignmentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDelayedAssignment, data), nil
}

func ParseDelayedAssignmentPayload(task *asynq.Task) (DelayedAssignmentPayload, error) {
	var payload DelayedAssignmentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DelayedAssignmentPayload{}, err
	}
	return payload, nil
}

func NewColdLeadReshuffleTask() (*asynq.Task, error) {
	data, err := json.Marshal(ColdLeadReshufflePayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskColdLeadReshuffle, data), nil
}
