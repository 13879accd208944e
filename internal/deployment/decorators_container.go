package deployment

import (
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
)

// reservedVolumeNames are claimed by the pipeline's own decorators; a
// user-supplied secret mount must not collide with them.
var reservedVolumeNames = map[string]struct{}{
	constants.FlinkConfVolume:     {},
	constants.HadoopConfVolume:    {},
	constants.KerberosKeytabVol:   {},
	constants.KerberosKrb5ConfVol: {},
	constants.UserLibVolume:       {},
}

// initJobManagerDecorator seeds the main container with image, resources,
// and ports, and the pod with its identity: labels, service account, and
// the downward-API pod IP used by the Flink entrypoint.
type initJobManagerDecorator struct {
	params JobManagerParameters
}

func (d *initJobManagerDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	out := pod.DeepCopy()

	out.MainContainer.Name = constants.MainContainerName
	out.MainContainer.Image = d.params.Image
	out.MainContainer.ImagePullPolicy = d.params.ImagePullPolicy
	out.MainContainer.Resources = d.params.Resources
	out.MainContainer.Ports = []corev1.ContainerPort{
		{Name: constants.PortNameRest, ContainerPort: constants.PortRest, Protocol: corev1.ProtocolTCP},
		{Name: constants.PortNameRPC, ContainerPort: constants.PortRPC, Protocol: corev1.ProtocolTCP},
		{Name: constants.PortNameBlob, ContainerPort: constants.PortBlob, Protocol: corev1.ProtocolTCP},
	}
	out.MainContainer.Env = append(out.MainContainer.Env, corev1.EnvVar{
		Name: constants.EnvFlinkPodIP,
		ValueFrom: &corev1.EnvVarSource{
			FieldRef: &corev1.ObjectFieldSelector{
				APIVersion: constants.APIVersionCore,
				FieldPath:  "status.podIP",
			},
		},
	})

	if out.Pod.Labels == nil {
		out.Pod.Labels = map[string]string{}
	}
	for k, v := range d.params.Labels {
		out.Pod.Labels[k] = v
	}
	out.Pod.Annotations = mergeStringMaps(out.Pod.Annotations, d.params.Annotations)
	out.Pod.Spec.ServiceAccountName = d.params.ServiceAccount

	return out, nil
}

func (d *initJobManagerDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	return nil, nil
}

// envSecretsDecorator wires environment variables sourced from Secret keys
// into the main container.
type envSecretsDecorator struct {
	params JobManagerParameters
}

func (d *envSecretsDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	if len(d.params.EnvSecretRefs) == 0 {
		return pod, nil
	}
	out := pod.DeepCopy()
	for _, ref := range d.params.EnvSecretRefs {
		out.MainContainer.Env = append(out.MainContainer.Env, corev1.EnvVar{
			Name: ref.EnvName,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: ref.Secret},
					Key:                  ref.Key,
				},
			},
		})
	}
	return out, nil
}

func (d *envSecretsDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	return nil, nil
}

// mountSecretsDecorator mounts user-declared Secrets into the main
// container. Volume names derive from the secret name and must not collide
// with the volumes the pipeline itself owns.
type mountSecretsDecorator struct {
	params JobManagerParameters
}

func secretVolumeName(secret string) string {
	return secret + "-volume"
}

func (d *mountSecretsDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	if len(d.params.SecretMounts) == 0 {
		return pod, nil
	}
	out := pod.DeepCopy()
	for _, mount := range d.params.SecretMounts {
		volumeName := secretVolumeName(mount.Name)
		if _, reserved := reservedVolumeNames[volumeName]; reserved {
			return PodTemplate{}, operatorerrors.NewConfiguration(
				"secret %s conflicts with reserved volume name %s", mount.Name, volumeName)
		}
		out.Pod.Spec.Volumes = append(out.Pod.Spec.Volumes, corev1.Volume{
			Name: volumeName,
			VolumeSource: corev1.VolumeSource{
				Secret: &corev1.SecretVolumeSource{SecretName: mount.Name},
			},
		})
		out.MainContainer.VolumeMounts = append(out.MainContainer.VolumeMounts, corev1.VolumeMount{
			Name:      volumeName,
			MountPath: mount.Path,
			ReadOnly:  true,
		})
	}
	return out, nil
}

func (d *mountSecretsDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	return nil, nil
}

// cmdJobManagerDecorator sets the entrypoint arguments: plain "jobmanager"
// for session clusters, "standalone-job" plus job arguments for application
// clusters. Runs after the credential decorators so it is the last step
// touching the container before networking.
type cmdJobManagerDecorator struct {
	params JobManagerParameters
}

func (d *cmdJobManagerDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	out := pod.DeepCopy()
	out.MainContainer.Args = jobManagerArgs(d.params.Job)
	return out, nil
}

func jobManagerArgs(job *flinkv1alpha1.JobSpec) []string {
	if job == nil {
		return []string{"jobmanager"}
	}
	args := []string{"standalone-job"}
	if job.EntryClass != "" {
		args = append(args, "--job-classname", job.EntryClass)
	}
	return append(args, job.Args...)
}

func (d *cmdJobManagerDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	return nil, nil
}

func mergeStringMaps(base, overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(overrides))
	}
	for k, v := range overrides {
		base[k] = v
	}
	return base
}
