package deployment

import (
	"path"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/Grypse/flink-kubernetes-operator/internal/config"
	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

// hadoopConfMountDecorator mounts an existing Hadoop configuration
// ConfigMap and exports HADOOP_CONF_DIR. No-op unless configured.
type hadoopConfMountDecorator struct {
	params JobManagerParameters
}

func (d *hadoopConfMountDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	if d.params.HadoopConfConfigMap == "" {
		return pod, nil
	}
	out := pod.DeepCopy()
	out.Pod.Spec.Volumes = append(out.Pod.Spec.Volumes, corev1.Volume{
		Name: constants.HadoopConfVolume,
		VolumeSource: corev1.VolumeSource{
			ConfigMap: &corev1.ConfigMapVolumeSource{
				LocalObjectReference: corev1.LocalObjectReference{Name: d.params.HadoopConfConfigMap},
			},
		},
	})
	out.MainContainer.VolumeMounts = append(out.MainContainer.VolumeMounts, corev1.VolumeMount{
		Name:      constants.HadoopConfVolume,
		MountPath: constants.HadoopConfDir,
		ReadOnly:  true,
	})
	out.MainContainer.Env = append(out.MainContainer.Env, corev1.EnvVar{
		Name:  constants.EnvHadoopConfDir,
		Value: constants.HadoopConfDir,
	})
	return out, nil
}

func (d *hadoopConfMountDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	return nil, nil
}

// kerberosMountDecorator mounts the Kerberos keytab Secret and krb5.conf
// ConfigMap when either is configured. Configuring only one of the two is
// a precondition violation: Flink needs both to authenticate.
type kerberosMountDecorator struct {
	params JobManagerParameters
}

func (d *kerberosMountDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	keytab := d.params.KerberosKeytabSecret
	krb5 := d.params.KerberosKrb5ConfigMap
	if keytab == "" && krb5 == "" {
		return pod, nil
	}
	if keytab == "" || krb5 == "" {
		return PodTemplate{}, operatorerrors.NewConfiguration(
			"kerberos requires both %s and %s to be set",
			config.KeyKerberosKeytabSecret, config.KeyKerberosKrb5ConfigMap)
	}

	out := pod.DeepCopy()
	out.Pod.Spec.Volumes = append(out.Pod.Spec.Volumes,
		corev1.Volume{
			Name: constants.KerberosKeytabVol,
			VolumeSource: corev1.VolumeSource{
				Secret: &corev1.SecretVolumeSource{
					SecretName: keytab,
					Items: []corev1.KeyToPath{
						{Key: constants.KerberosKeytabFile, Path: constants.KerberosKeytabFile},
					},
				},
			},
		},
		corev1.Volume{
			Name: constants.KerberosKrb5ConfVol,
			VolumeSource: corev1.VolumeSource{
				ConfigMap: &corev1.ConfigMapVolumeSource{
					LocalObjectReference: corev1.LocalObjectReference{Name: krb5},
					Items: []corev1.KeyToPath{
						{Key: constants.KerberosKrb5ConFile, Path: constants.KerberosKrb5ConFile},
					},
				},
			},
		},
	)
	out.MainContainer.VolumeMounts = append(out.MainContainer.VolumeMounts,
		corev1.VolumeMount{
			Name:      constants.KerberosKeytabVol,
			MountPath: constants.KerberosKeytabDir,
			ReadOnly:  true,
		},
		corev1.VolumeMount{
			Name:      constants.KerberosKrb5ConfVol,
			MountPath: path.Join("/etc", constants.KerberosKrb5ConFile),
			SubPath:   constants.KerberosKrb5ConFile,
			ReadOnly:  true,
		},
	)
	out.MainContainer.Env = append(out.MainContainer.Env, corev1.EnvVar{
		Name:  constants.EnvKrb5ConfigPath,
		Value: path.Join("/etc", constants.KerberosKrb5ConFile),
	})
	return out, nil
}

func (d *kerberosMountDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	return nil, nil
}

// flinkConfMountDecorator renders the flink-conf.yaml ConfigMap and mounts
// it at the Flink configuration directory. It runs late in the chain so the
// configuration it snapshots already reflects every earlier decision.
type flinkConfMountDecorator struct {
	params JobManagerParameters
}

func (d *flinkConfMountDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	out := pod.DeepCopy()
	out.Pod.Spec.Volumes = append(out.Pod.Spec.Volumes, corev1.Volume{
		Name: constants.FlinkConfVolume,
		VolumeSource: corev1.VolumeSource{
			ConfigMap: &corev1.ConfigMapVolumeSource{
				LocalObjectReference: corev1.LocalObjectReference{
					Name: naming.FlinkConfConfigMapName(d.params.ClusterID),
				},
			},
		},
	})
	out.MainContainer.VolumeMounts = append(out.MainContainer.VolumeMounts, corev1.VolumeMount{
		Name:      constants.FlinkConfVolume,
		MountPath: constants.FlinkConfDir,
	})
	return out, nil
}

func (d *flinkConfMountDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	flinkConf, err := config.RenderFlinkConf(d.params.FlinkConfiguration)
	if err != nil {
		return nil, err
	}
	configMap := &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			Kind:       "ConfigMap",
			APIVersion: constants.APIVersionCore,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            naming.FlinkConfConfigMapName(d.params.ClusterID),
			Namespace:       d.params.Namespace,
			Labels:          d.params.Labels,
			OwnerReferences: d.params.OwnerReferences,
		},
		Data: map[string]string{
			constants.FlinkConfFile:      flinkConf,
			constants.Log4jConsoleFile:   config.DefaultLog4jProperties,
			constants.LogbackConsoleFile: config.DefaultLogbackXML,
		},
	}
	return []client.Object{configMap}, nil
}

// userLibMountDecorator provides the user artifact directory for
// application-mode clusters. Session clusters have no user lib to mount.
type userLibMountDecorator struct {
	params JobManagerParameters
}

func (d *userLibMountDecorator) Decorate(pod PodTemplate) (PodTemplate, error) {
	if d.params.Job == nil {
		return pod, nil
	}
	out := pod.DeepCopy()
	out.Pod.Spec.Volumes = append(out.Pod.Spec.Volumes, corev1.Volume{
		Name: constants.UserLibVolume,
		VolumeSource: corev1.VolumeSource{
			EmptyDir: &corev1.EmptyDirVolumeSource{},
		},
	})
	out.MainContainer.VolumeMounts = append(out.MainContainer.VolumeMounts, corev1.VolumeMount{
		Name:      constants.UserLibVolume,
		MountPath: constants.UserLibDir,
	})
	return out, nil
}

func (d *userLibMountDecorator) BuildAccompanyingResources() ([]client.Object, error) {
	return nil, nil
}
