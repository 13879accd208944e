package deployment

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

// BuildJobManagerDeploymentSpec composes the job-manager pod through the
// decorator chain and assembles the final StatefulSet around it. The input
// template is copied before composition, so callers may retain their value.
// Composition is atomic: any decorator error aborts with no partial output.
func BuildJobManagerDeploymentSpec(podTemplate PodTemplate, volumeClaims []corev1.PersistentVolumeClaim, params JobManagerParameters) (*JobManagerDeploymentSpec, error) {
	composed, auxiliary, err := Compose(podTemplate, JobManagerDecorators(params))
	if err != nil {
		return nil, err
	}

	statefulSet := buildJobManagerStatefulSet(composed, volumeClaims, params)

	return &JobManagerDeploymentSpec{
		StatefulSet: statefulSet,
		Auxiliary:   auxiliary,
	}, nil
}

// buildJobManagerStatefulSet folds the resolved main container back into
// the pod spec and wraps the result in a StatefulSet. The selector always
// equals the pod labels by construction, and VolumeClaimTemplates is left
// unset entirely when no claims are given: the platform treats "no field"
// and "empty list" differently for storage attachment.
func buildJobManagerStatefulSet(pod PodTemplate, volumeClaims []corev1.PersistentVolumeClaim, params JobManagerParameters) *appsv1.StatefulSet {
	resolvedPod := *pod.Pod.DeepCopy()
	resolvedPod.Spec.Containers = append([]corev1.Container{pod.MainContainer}, resolvedPod.Spec.Containers...)

	statefulSet := &appsv1.StatefulSet{
		TypeMeta: metav1.TypeMeta{
			Kind:       "StatefulSet",
			APIVersion: constants.APIVersionApps,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            naming.JobManagerStatefulSetName(params.ClusterID),
			Namespace:       params.Namespace,
			Labels:          params.Labels,
			Annotations:     params.Annotations,
			OwnerReferences: params.OwnerReferences,
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName: params.ClusterID,
			Replicas:    ptr.To(params.Replicas),
			Selector: &metav1.LabelSelector{
				MatchLabels: params.SelectorLabels,
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: resolvedPod.ObjectMeta,
				Spec:       resolvedPod.Spec,
			},
		},
	}

	if len(volumeClaims) > 0 {
		statefulSet.Spec.VolumeClaimTemplates = volumeClaims
	}

	return statefulSet
}
