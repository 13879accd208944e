package deployment

import (
	appsv1 "k8s.io/api/apps/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// JobManagerDeploymentSpec is the deployment specification for one
// cluster's job-manager role: the stateful workload plus the auxiliary
// resources the decorator chain produced, in apply order. It is built fresh
// per call and never mutated afterwards.
type JobManagerDeploymentSpec struct {
	StatefulSet *appsv1.StatefulSet
	Auxiliary   []client.Object
}
