package deployment

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/config"
	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

// TaskManagerParameters carries what the task-manager workload builder
// needs. Unlike the job manager, the worker role has no decorator chain:
// its pod is a single container plus the shared configuration mount.
type TaskManagerParameters struct {
	ClusterID string
	Namespace string

	Image           string
	ImagePullPolicy corev1.PullPolicy
	ServiceAccount  string

	Labels          map[string]string
	SelectorLabels  map[string]string
	OwnerReferences []metav1.OwnerReference

	Replicas  int32
	Resources corev1.ResourceRequirements
}

// NewTaskManagerParameters resolves the worker parameter bundle. The
// replica count comes from the task-manager spec, or from job parallelism
// and the configured slot count when the reactive scheduler is on.
func NewTaskManagerParameters(dep *flinkv1alpha1.FlinkDeployment, cfg config.Configuration) (TaskManagerParameters, error) {
	clusterID := cfg.GetString(config.KeyClusterID, dep.Name)

	replicas := int32(1)
	if dep.Spec.TaskManager != nil && dep.Spec.TaskManager.Replicas != nil {
		replicas = *dep.Spec.TaskManager.Replicas
	}
	if cfg.ReactiveSchedulerEnabled() && dep.Spec.Job != nil {
		desired, err := ReplicasForParallelism(dep.Spec.Job.Parallelism, cfg)
		if err != nil {
			return TaskManagerParameters{}, err
		}
		replicas = desired
	}

	selector := naming.TaskManagerSelectorLabels(clusterID)
	labels := make(map[string]string, len(selector)+1)
	for k, v := range selector {
		labels[k] = v
	}
	labels[constants.LabelType] = constants.LabelValueTypeNative

	var resources corev1.ResourceRequirements
	if dep.Spec.TaskManager != nil {
		resources = *dep.Spec.TaskManager.Resource.DeepCopy()
	}

	return TaskManagerParameters{
		ClusterID:       clusterID,
		Namespace:       cfg.GetString(config.KeyNamespace, dep.Namespace),
		Image:           dep.Spec.Image,
		ImagePullPolicy: dep.Spec.ImagePullPolicy,
		ServiceAccount:  cfg.GetString(config.KeyServiceAccount, config.DefaultServiceAccount),
		Labels:          labels,
		SelectorLabels:  selector,
		OwnerReferences: ownerReference(dep),
		Replicas:        replicas,
		Resources:       resources,
	}, nil
}

// ReplicasForParallelism maps a desired job parallelism onto a task-manager
// replica count: one replica per taskmanager.numberOfTaskSlots slots,
// rounded up. The slot count is an explicit configuration value, default 1.
func ReplicasForParallelism(parallelism int32, cfg config.Configuration) (int32, error) {
	slots, err := cfg.GetInt(config.KeyTaskSlots, config.DefaultTaskSlots)
	if err != nil {
		return 0, operatorerrors.WrapConfiguration(err)
	}
	if slots < 1 {
		return 0, operatorerrors.NewConfiguration("option %s must be at least 1, got %d", config.KeyTaskSlots, slots)
	}
	if parallelism < 1 {
		parallelism = 1
	}
	return (parallelism + int32(slots) - 1) / int32(slots), nil
}

// BuildTaskManagerStatefulSet assembles the worker StatefulSet. The pod
// mounts the same flink-conf ConfigMap the job-manager pipeline produced;
// the workload is otherwise self-contained.
func BuildTaskManagerStatefulSet(params TaskManagerParameters) *appsv1.StatefulSet {
	container := corev1.Container{
		Name:            constants.MainContainerName,
		Image:           params.Image,
		ImagePullPolicy: params.ImagePullPolicy,
		Resources:       params.Resources,
		Args:            []string{"taskmanager"},
		Env: []corev1.EnvVar{
			{
				Name: constants.EnvFlinkPodIP,
				ValueFrom: &corev1.EnvVarSource{
					FieldRef: &corev1.ObjectFieldSelector{
						APIVersion: constants.APIVersionCore,
						FieldPath:  "status.podIP",
					},
				},
			},
		},
		VolumeMounts: []corev1.VolumeMount{
			{
				Name:      constants.FlinkConfVolume,
				MountPath: constants.FlinkConfDir,
			},
		},
	}

	return &appsv1.StatefulSet{
		TypeMeta: metav1.TypeMeta{
			Kind:       "StatefulSet",
			APIVersion: constants.APIVersionApps,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            naming.TaskManagerStatefulSetName(params.ClusterID),
			Namespace:       params.Namespace,
			Labels:          params.Labels,
			OwnerReferences: params.OwnerReferences,
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName: naming.InternalServiceName(params.ClusterID),
			Replicas:    ptr.To(params.Replicas),
			Selector: &metav1.LabelSelector{
				MatchLabels: params.SelectorLabels,
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: params.Labels,
				},
				Spec: corev1.PodSpec{
					ServiceAccountName: params.ServiceAccount,
					Containers:         []corev1.Container{container},
					Volumes: []corev1.Volume{
						{
							Name: constants.FlinkConfVolume,
							VolumeSource: corev1.VolumeSource{
								ConfigMap: &corev1.ConfigMapVolumeSource{
									LocalObjectReference: corev1.LocalObjectReference{
										Name: naming.FlinkConfConfigMapName(params.ClusterID),
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
