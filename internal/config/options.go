// Package config provides the effective Flink configuration the operator
// core consumes: typed accessors over the flat key/value option map plus
// rendering of the configuration files mounted into cluster pods.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Flink option keys understood by this operator core. The keys follow the
// upstream Flink configuration namespace so user-supplied flinkConfiguration
// entries pass through unchanged.
const (
	KeySchedulerMode = "scheduler-mode"

	KeyTaskSlots = "taskmanager.numberOfTaskSlots"

	KeyClusterID          = "kubernetes.cluster-id"
	KeyNamespace          = "kubernetes.namespace"
	KeyJobManagerReplicas = "kubernetes.jobmanager.replicas"
	KeyServiceAccount     = "kubernetes.service-account"
	KeyRestServiceType    = "kubernetes.rest-service.exposed.type"

	// KeyEnvSecrets lists env-from-secret entries as
	// "env:ENV_NAME,secret:secret-name,key:secret-key" separated by semicolons.
	KeyEnvSecrets = "kubernetes.env.secretKeyRef"
	// KeySecretMounts lists secret-to-path mounts as "name:path" pairs
	// separated by commas.
	KeySecretMounts = "kubernetes.secrets"

	KeyHadooopConfConfigMap  = "kubernetes.hadoop.conf.config-map.name"
	KeyKerberosKeytabSecret  = "security.kerberos.login.keytab-secret"
	KeyKerberosKrb5ConfigMap = "security.kerberos.krb5-conf.config-map"

	KeyHAType = "high-availability.type"
)

// SchedulerModeReactive is the scheduler-mode value that permits replica
// count to track declared parallelism after creation.
const SchedulerModeReactive = "reactive"

// HATypeKubernetes selects ConfigMap-backed high availability.
const HATypeKubernetes = "kubernetes"

// Defaults applied when an option is absent.
const (
	DefaultTaskSlots          = 1
	DefaultJobManagerReplicas = 1
	DefaultServiceAccount     = "flink"
	DefaultRestServiceType    = "ClusterIP"
)

// Configuration is the effective, flattened Flink configuration for one
// cluster. It is treated as immutable by everything that receives it; use
// Clone before mutating a copy.
type Configuration map[string]string

// Get returns the raw value and whether the key is set.
func (c Configuration) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns the value for key, or fallback when unset or empty.
func (c Configuration) GetString(key, fallback string) string {
	if v, ok := c[key]; ok && v != "" {
		return v
	}
	return fallback
}

// GetInt returns the integer value for key, or fallback when unset. A set
// but unparsable value is a configuration error.
func (c Configuration) GetInt(key string, fallback int) (int, error) {
	v, ok := c[key]
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("option %s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

// Clone returns an independent copy of the configuration.
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a new Configuration with entries from overrides replacing
// entries in c. Neither input is mutated.
func (c Configuration) Merge(overrides map[string]string) Configuration {
	out := c.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// ReactiveSchedulerEnabled reports whether scheduler-mode is explicitly set
// to reactive. An absent option means reactive scaling is off.
func (c Configuration) ReactiveSchedulerEnabled() bool {
	return c.GetString(KeySchedulerMode, "") == SchedulerModeReactive
}

// KubernetesHAEnabled reports whether ConfigMap-backed HA is configured.
func (c Configuration) KubernetesHAEnabled() bool {
	return c.GetString(KeyHAType, "") == HATypeKubernetes
}
