package criteria

import (
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
)

// Supported request filter names
const (
	Status    = "Status"
	Initiator = "Initiator"
	Assignee  = "Assignee"
	Workflow  = "Workflow"
	Previous  = "Previous"
)

// ByStatus returns a status filter
func ByStatus(statuses ...model.Status) *dao.Parameter {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	return &dao.Parameter{Name: Status, Value: values}
}

// ByInitiator returns an initiator filter
func ByInitiator(userID string) *dao.Parameter {
	return dao.NewParameter(Initiator, userID)
}

// ByAssignee returns a current assignee filter
func ByAssignee(userID string) *dao.Parameter {
	return dao.NewParameter(Assignee, userID)
}

// ByWorkflow returns a workflow id filter
func ByWorkflow(workflowID string) *dao.Parameter {
	return dao.NewParameter(Workflow, workflowID)
}

// ByPrevious returns a filter of requests resubmitted from requestID
func ByPrevious(requestID string) *dao.Parameter {
	return dao.NewParameter(Previous, requestID)
}

// Match returns true if the request satisfies all parameters; unknown
// parameter names are ignored
func Match(request *model.Request, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		values := parameter.Values()
		switch parameter.Name {
		case Status:
			if !contains(values, string(request.Status)) {
				return false
			}
		case Initiator:
			if !contains(values, request.InitiatorID) {
				return false
			}
		case Workflow:
			if !contains(values, request.WorkflowID) {
				return false
			}
		case Previous:
			if !contains(values, request.PreviousRequestID) {
				return false
			}
		case Assignee:
			matched := false
			for _, candidate := range request.CurrentAssignees {
				if contains(values, candidate) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

func contains(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
