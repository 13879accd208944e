package deployment

import (
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// StepDecorator is one composition step: a pure transformation of the pod
// template plus the auxiliary resources that step contributes. Decorators
// never perform I/O against the control plane and never observe each
// other's state except through the template value handed along the chain.
type StepDecorator interface {
	// Decorate returns a new template derived from the input. The input
	// value is owned by the pipeline; implementations must not retain it.
	Decorate(pod PodTemplate) (PodTemplate, error)

	// BuildAccompanyingResources returns the auxiliary resources this step
	// produces, in the order they should be applied.
	BuildAccompanyingResources() ([]client.Object, error)
}

// JobManagerDecorators is the fixed decorator chain for the job-manager
// role. The order is policy, not computed: initialization first, credential
// material next, the container command, then networking (internal before
// external), and the configuration and library mounts last. Later steps may
// assume earlier steps already populated image, resources, and ports.
func JobManagerDecorators(params JobManagerParameters) []StepDecorator {
	return []StepDecorator{
		&initJobManagerDecorator{params: params},
		&envSecretsDecorator{params: params},
		&mountSecretsDecorator{params: params},
		&cmdJobManagerDecorator{params: params},
		&internalServiceDecorator{params: params},
		&restServiceDecorator{params: params},
		&hadoopConfMountDecorator{params: params},
		&kerberosMountDecorator{params: params},
		&flinkConfMountDecorator{params: params},
		&userLibMountDecorator{params: params},
	}
}

// Compose runs the decorators over a private copy of the initial template
// and concatenates their auxiliary resources in decorator order. The first
// error aborts the whole composition; callers never observe a partially
// composed template or a partial resource list.
func Compose(pod PodTemplate, decorators []StepDecorator) (PodTemplate, []client.Object, error) {
	current := pod.DeepCopy()

	var auxiliary []client.Object
	for _, decorator := range decorators {
		next, err := decorator.Decorate(current)
		if err != nil {
			return PodTemplate{}, nil, err
		}
		resources, err := decorator.BuildAccompanyingResources()
		if err != nil {
			return PodTemplate{}, nil, err
		}
		current = next
		auxiliary = append(auxiliary, resources...)
	}

	return current, auxiliary, nil
}
