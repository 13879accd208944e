package errors

import (
	"errors"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
)

// DeploymentFailedError signals that a cluster deployment has failed in a
// way that will not self-heal, for example a container stuck waiting with a
// non-retryable reason. It carries the structured message and reason from
// the condition that produced it.
type DeploymentFailedError struct {
	Message string
	Reason  string
}

func (e *DeploymentFailedError) Error() string {
	if e.Reason == "" {
		return e.Message
	}
	return e.Reason + ": " + e.Message
}

// IsDeploymentFailed checks whether err is a deployment failure.
func IsDeploymentFailed(err error) bool {
	var dfe *DeploymentFailedError
	return errors.As(err, &dfe)
}

// NewDeploymentFailed builds a DeploymentFailedError from a message and reason.
func NewDeploymentFailed(message, reason string) *DeploymentFailedError {
	return &DeploymentFailedError{Message: message, Reason: reason}
}

// DeploymentFailedFromCondition builds a DeploymentFailedError from a
// failed workload condition.
func DeploymentFailedFromCondition(cond appsv1.DeploymentCondition) *DeploymentFailedError {
	return &DeploymentFailedError{Message: cond.Message, Reason: cond.Reason}
}

// DeploymentFailedFromContainerWaiting builds a DeploymentFailedError from
// a container waiting state, for example ImagePullBackOff.
func DeploymentFailedFromContainerWaiting(waiting corev1.ContainerStateWaiting) *DeploymentFailedError {
	return &DeploymentFailedError{Message: waiting.Message, Reason: waiting.Reason}
}
