// Package deployment implements the resource composition pipeline that
// turns cluster parameters into the job-manager deployment specification:
// an ordered decorator chain over a pod template, a StatefulSet builder,
// and the auxiliary resources (services, config maps) that accompany it.
package deployment

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
)

// PodTemplate is the working state the decorator chain threads through its
// steps: the main Flink container held separately from the rest of the pod.
// The pod never carries the main container between steps; the factory folds
// it back in exactly once when the final pod spec is assembled.
//
// PodTemplate is a value type. Each pipeline invocation owns its copy and
// decorators return new values instead of mutating shared state.
type PodTemplate struct {
	MainContainer corev1.Container
	Pod           corev1.Pod
}

// NewPodTemplate returns an empty template with the main container named.
func NewPodTemplate() PodTemplate {
	return PodTemplate{
		MainContainer: corev1.Container{
			Name: constants.MainContainerName,
		},
	}
}

// DeepCopy returns an independent copy of the template.
func (t PodTemplate) DeepCopy() PodTemplate {
	return PodTemplate{
		MainContainer: *t.MainContainer.DeepCopy(),
		Pod:           *t.Pod.DeepCopy(),
	}
}
