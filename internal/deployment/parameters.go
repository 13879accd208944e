package deployment

import (
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/config"
	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

// SecretMount maps a Kubernetes Secret onto a path in the main container.
type SecretMount struct {
	Name string
	Path string
}

// EnvSecretRef sources an environment variable from a Secret key.
type EnvSecretRef struct {
	EnvName string
	Secret  string
	Key     string
}

// JobManagerParameters is the immutable parameter bundle one pipeline
// invocation reads. It is fully resolved up front so decorators stay pure
// functions of (template, parameters).
type JobManagerParameters struct {
	ClusterID string
	Namespace string

	Image           string
	ImagePullPolicy corev1.PullPolicy
	ServiceAccount  string

	Labels          map[string]string
	Annotations     map[string]string
	SelectorLabels  map[string]string
	OwnerReferences []metav1.OwnerReference

	Replicas  int32
	Resources corev1.ResourceRequirements

	EnvSecretRefs []EnvSecretRef
	SecretMounts  []SecretMount

	HadoopConfConfigMap   string
	KerberosKeytabSecret  string
	KerberosKrb5ConfigMap string

	RestServiceType corev1.ServiceType

	FlinkConfiguration config.Configuration

	// Job is set for application-mode clusters and consumed by the
	// command and user-lib decorators. Nil for session clusters.
	Job *flinkv1alpha1.JobSpec
}

// NewJobManagerParameters resolves the parameter bundle for a deployment
// and its effective configuration. Malformed mount or env-secret options
// are configuration errors.
func NewJobManagerParameters(dep *flinkv1alpha1.FlinkDeployment, cfg config.Configuration) (JobManagerParameters, error) {
	clusterID := cfg.GetString(config.KeyClusterID, dep.Name)
	namespace := cfg.GetString(config.KeyNamespace, dep.Namespace)

	replicas, err := cfg.GetInt(config.KeyJobManagerReplicas, config.DefaultJobManagerReplicas)
	if err != nil {
		return JobManagerParameters{}, operatorerrors.WrapConfiguration(err)
	}
	if dep.Spec.JobManager != nil && dep.Spec.JobManager.Replicas > 0 {
		replicas = int(dep.Spec.JobManager.Replicas)
	}

	secretMounts, err := parseSecretMounts(cfg.GetString(config.KeySecretMounts, ""))
	if err != nil {
		return JobManagerParameters{}, err
	}
	envSecretRefs, err := parseEnvSecretRefs(cfg.GetString(config.KeyEnvSecrets, ""))
	if err != nil {
		return JobManagerParameters{}, err
	}

	selector := naming.JobManagerSelectorLabels(clusterID)
	labels := make(map[string]string, len(selector)+1)
	for k, v := range selector {
		labels[k] = v
	}
	labels[constants.LabelType] = constants.LabelValueTypeNative

	var resources corev1.ResourceRequirements
	if dep.Spec.JobManager != nil {
		resources = *dep.Spec.JobManager.Resource.DeepCopy()
	}

	params := JobManagerParameters{
		ClusterID:             clusterID,
		Namespace:             namespace,
		Image:                 dep.Spec.Image,
		ImagePullPolicy:       dep.Spec.ImagePullPolicy,
		ServiceAccount:        cfg.GetString(config.KeyServiceAccount, config.DefaultServiceAccount),
		Labels:                labels,
		Annotations:           dep.Annotations,
		SelectorLabels:        selector,
		OwnerReferences:       ownerReference(dep),
		Replicas:              int32(replicas),
		Resources:             resources,
		EnvSecretRefs:         envSecretRefs,
		SecretMounts:          secretMounts,
		HadoopConfConfigMap:   cfg.GetString(config.KeyHadooopConfConfigMap, ""),
		KerberosKeytabSecret:  cfg.GetString(config.KeyKerberosKeytabSecret, ""),
		KerberosKrb5ConfigMap: cfg.GetString(config.KeyKerberosKrb5ConfigMap, ""),
		RestServiceType:       corev1.ServiceType(cfg.GetString(config.KeyRestServiceType, config.DefaultRestServiceType)),
		FlinkConfiguration:    cfg.Clone(),
		Job:                   dep.Spec.Job.DeepCopy(),
	}

	return params, nil
}

func ownerReference(dep *flinkv1alpha1.FlinkDeployment) []metav1.OwnerReference {
	if dep.UID == "" {
		return nil
	}
	controller := true
	blockDeletion := true
	return []metav1.OwnerReference{
		{
			APIVersion:         flinkv1alpha1.GroupVersion.String(),
			Kind:               "FlinkDeployment",
			Name:               dep.Name,
			UID:                dep.UID,
			Controller:         &controller,
			BlockOwnerDeletion: &blockDeletion,
		},
	}
}

// parseSecretMounts parses the kubernetes.secrets format
// "name:path,name2:path2".
func parseSecretMounts(raw string) ([]SecretMount, error) {
	if raw == "" {
		return nil, nil
	}
	var mounts []SecretMount
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, path, ok := strings.Cut(entry, ":")
		if !ok || name == "" || path == "" {
			return nil, operatorerrors.NewConfiguration(
				"option %s: invalid secret mount %q, expected name:path", config.KeySecretMounts, entry)
		}
		mounts = append(mounts, SecretMount{Name: name, Path: path})
	}
	return mounts, nil
}

// parseEnvSecretRefs parses the kubernetes.env.secretKeyRef format
// "env:NAME,secret:secret-name,key:secret-key" with entries separated by
// semicolons.
func parseEnvSecretRefs(raw string) ([]EnvSecretRef, error) {
	if raw == "" {
		return nil, nil
	}
	var refs []EnvSecretRef
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		var ref EnvSecretRef
		for _, field := range strings.Split(entry, ",") {
			k, v, ok := strings.Cut(strings.TrimSpace(field), ":")
			if !ok {
				return nil, operatorerrors.NewConfiguration(
					"option %s: invalid field %q in %q", config.KeyEnvSecrets, field, entry)
			}
			switch k {
			case "env":
				ref.EnvName = v
			case "secret":
				ref.Secret = v
			case "key":
				ref.Key = v
			default:
				return nil, operatorerrors.NewConfiguration(
					"option %s: unknown field %q in %q", config.KeyEnvSecrets, k, entry)
			}
		}
		if ref.EnvName == "" || ref.Secret == "" || ref.Key == "" {
			return nil, operatorerrors.NewConfiguration(
				"option %s: entry %q must set env, secret, and key", config.KeyEnvSecrets, entry)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
