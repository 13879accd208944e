package config

import (
	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
)

// BuildFrom derives the effective Configuration for a FlinkDeployment by
// layering the user-supplied flinkConfiguration over operator defaults and
// pinning the cluster identity options. The result is a fresh map; the
// deployment spec is never mutated.
func BuildFrom(dep *flinkv1alpha1.FlinkDeployment) Configuration {
	cfg := Configuration{
		KeyServiceAccount:  DefaultServiceAccount,
		KeyRestServiceType: DefaultRestServiceType,
	}

	cfg = cfg.Merge(dep.Spec.FlinkConfiguration)

	if dep.Spec.ServiceAccount != "" {
		cfg[KeyServiceAccount] = dep.Spec.ServiceAccount
	}

	// Cluster identity always comes from the resource metadata so that
	// user configuration cannot point the operator at another cluster.
	cfg[KeyClusterID] = dep.Name
	cfg[KeyNamespace] = dep.Namespace

	return cfg
}
