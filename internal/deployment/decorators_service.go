package deployment

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

// internalServiceDecorator emits the headless service giving task managers
// a stable DNS name for the job-manager RPC and blob endpoints.
type internalServiceDecorator struct {
	params JobManagerParameters
}

func (d *internalServiceDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	return pod, nil
}

func (d *internalServiceDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	service := &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Service",
			APIVersion: constants.APIVersionCore,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            naming.InternalServiceName(d.params.ClusterID),
			Namespace:       d.params.Namespace,
			Labels:          d.params.Labels,
			OwnerReferences: d.params.OwnerReferences,
		},
		Spec: corev1.ServiceSpec{
			ClusterIP: corev1.ClusterIPNone,
			Selector:  d.params.SelectorLabels,
			Ports: []corev1.ServicePort{
				{
					Name:       constants.PortNameRPC,
					Port:       constants.PortRPC,
					TargetPort: intstr.FromInt32(constants.PortRPC),
					Protocol:   corev1.ProtocolTCP,
				},
				{
					Name:       constants.PortNameBlob,
					Port:       constants.PortBlob,
					TargetPort: intstr.FromInt32(constants.PortBlob),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
	return []client.Object{service}, nil
}

// restServiceDecorator emits the externally reachable REST service. Its
// type is configurable; ClusterIP by default.
type restServiceDecorator struct {
	params JobManagerParameters
}

func (d *restServiceDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	return pod, nil
}

func (d *restServiceDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	service := &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Service",
			APIVersion: constants.APIVersionCore,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            naming.RestServiceName(d.params.ClusterID),
			Namespace:       d.params.Namespace,
			Labels:          d.params.Labels,
			OwnerReferences: d.params.OwnerReferences,
		},
		Spec: corev1.ServiceSpec{
			Type:     d.params.RestServiceType,
			Selector: d.params.SelectorLabels,
			Ports: []corev1.ServicePort{
				{
					Name:       constants.PortNameRest,
					Port:       constants.PortRest,
					TargetPort: intstr.FromInt32(constants.PortRest),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
	return []client.Object{service}, nil
}
