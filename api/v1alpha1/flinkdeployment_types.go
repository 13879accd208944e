/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// FlinkDeploymentFinalizer is the finalizer used to ensure cluster
	// resources and optional HA metadata are removed before a
	// FlinkDeployment is fully deleted.
	FlinkDeploymentFinalizer = "flink.apache.org/flinkdeployment-finalizer"
)

// DeploymentMode selects how the Flink cluster is deployed on Kubernetes.
// +kubebuilder:validation:Enum=standalone;native
type DeploymentMode string

const (
	// DeploymentModeStandalone deploys the cluster as plain StatefulSets
	// managed entirely by this operator.
	DeploymentModeStandalone DeploymentMode = "standalone"
	// DeploymentModeNative delegates resource management to Flink's own
	// Kubernetes integration. Not handled by this operator core.
	DeploymentModeNative DeploymentMode = "native"
)

// JobState describes the desired state of a Flink job.
// +kubebuilder:validation:Enum=running;suspended
type JobState string

const (
	JobStateRunning   JobState = "running"
	JobStateSuspended JobState = "suspended"
)

// UpgradeMode describes how a job is moved to a new spec.
// +kubebuilder:validation:Enum=stateless;savepoint;last-state
type UpgradeMode string

const (
	UpgradeModeStateless UpgradeMode = "stateless"
	UpgradeModeSavepoint UpgradeMode = "savepoint"
	UpgradeModeLastState UpgradeMode = "last-state"
)

// JobSpec describes the job submitted to a Flink cluster running in
// application mode. When absent the cluster runs as a session cluster.
type JobSpec struct {
	// JarURI is the location of the job artifact inside the image or a
	// mounted volume.
	// +kubebuilder:validation:MinLength=1
	JarURI string `json:"jarURI"`

	// EntryClass is the fully qualified main class of the job. When empty
	// the main class is read from the jar manifest.
	// +optional
	EntryClass string `json:"entryClass,omitempty"`

	// Args are passed to the job main method.
	// +optional
	Args []string `json:"args,omitempty"`

	// Parallelism is the desired parallelism of the job. With reactive
	// scheduling it drives the task-manager replica count.
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:default=1
	Parallelism int32 `json:"parallelism,omitempty"`

	// State is the desired state of the job.
	// +optional
	// +kubebuilder:default=running
	State JobState `json:"state,omitempty"`

	// UpgradeMode controls how spec changes are rolled out to the job.
	// +optional
	// +kubebuilder:default=stateless
	UpgradeMode UpgradeMode `json:"upgradeMode,omitempty"`
}

// JobManagerSpec configures the coordinator role of the cluster.
type JobManagerSpec struct {
	// Replicas is the number of job-manager replicas. More than one only
	// makes sense with high availability configured.
	// +optional
	// +kubebuilder:default=1
	// +kubebuilder:validation:Minimum=1
	Replicas int32 `json:"replicas,omitempty"`

	// Resource requirements for the job-manager container.
	// +optional
	Resource corev1.ResourceRequirements `json:"resource,omitempty"`
}

// TaskManagerSpec configures the worker role of the cluster.
type TaskManagerSpec struct {
	// Replicas is the number of task-manager replicas. Ignored when the
	// reactive scheduler drives replica count from job parallelism.
	// +optional
	Replicas *int32 `json:"replicas,omitempty"`

	// Resource requirements for the task-manager container.
	// +optional
	Resource corev1.ResourceRequirements `json:"resource,omitempty"`
}

// FlinkDeploymentSpec defines the desired state of a Flink cluster and the
// optional job running on it.
type FlinkDeploymentSpec struct {
	// Image is the Flink container image for both roles.
	// +kubebuilder:validation:MinLength=1
	Image string `json:"image"`

	// ImagePullPolicy for the Flink containers.
	// +optional
	// +kubebuilder:default=IfNotPresent
	ImagePullPolicy corev1.PullPolicy `json:"imagePullPolicy,omitempty"`

	// FlinkVersion is the Flink release the image carries, e.g. "1.17".
	// +optional
	FlinkVersion string `json:"flinkVersion,omitempty"`

	// ServiceAccount used by the cluster pods.
	// +optional
	// +kubebuilder:default=flink
	ServiceAccount string `json:"serviceAccount,omitempty"`

	// Mode selects standalone or native deployment.
	// +optional
	// +kubebuilder:default=standalone
	Mode DeploymentMode `json:"mode,omitempty"`

	// FlinkConfiguration holds Flink configuration options merged into
	// flink-conf.yaml, e.g. scheduler-mode or taskmanager.numberOfTaskSlots.
	// +optional
	FlinkConfiguration map[string]string `json:"flinkConfiguration,omitempty"`

	// JobManager configuration.
	// +optional
	JobManager *JobManagerSpec `json:"jobManager,omitempty"`

	// TaskManager configuration.
	// +optional
	TaskManager *TaskManagerSpec `json:"taskManager,omitempty"`

	// Job describes the application-mode job. When absent the cluster is a
	// session cluster.
	// +optional
	Job *JobSpec `json:"job,omitempty"`
}

// JobManagerDeploymentStatus describes the observed state of the
// job-manager workload.
// +kubebuilder:validation:Enum=Missing;Deploying;Ready;Error
type JobManagerDeploymentStatus string

const (
	// JobManagerDeploymentStatusMissing means no job-manager workload
	// exists for the cluster.
	JobManagerDeploymentStatusMissing JobManagerDeploymentStatus = "Missing"
	// JobManagerDeploymentStatusDeploying means the workload exists but is
	// not yet fully available.
	JobManagerDeploymentStatusDeploying JobManagerDeploymentStatus = "Deploying"
	// JobManagerDeploymentStatusReady means the workload is available.
	JobManagerDeploymentStatusReady JobManagerDeploymentStatus = "Ready"
	// JobManagerDeploymentStatusError means the workload failed in a way
	// that will not self-heal.
	JobManagerDeploymentStatusError JobManagerDeploymentStatus = "Error"
)

// FlinkDeploymentStatus defines the observed state of a FlinkDeployment.
type FlinkDeploymentStatus struct {
	// JobManagerDeploymentStatus is the last observed state of the
	// job-manager workload.
	// +optional
	JobManagerDeploymentStatus JobManagerDeploymentStatus `json:"jobManagerDeploymentStatus,omitempty"`

	// Error holds the last terminal error observed for the deployment.
	// +optional
	Error string `json:"error,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Mode",type=string,JSONPath=`.spec.mode`
// +kubebuilder:printcolumn:name="JM Status",type=string,JSONPath=`.status.jobManagerDeploymentStatus`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// FlinkDeployment is the Schema for the flinkdeployments API.
type FlinkDeployment struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   FlinkDeploymentSpec   `json:"spec,omitempty"`
	Status FlinkDeploymentStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// FlinkDeploymentList contains a list of FlinkDeployment.
type FlinkDeploymentList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []FlinkDeployment `json:"items"`
}

func init() {
	SchemeBuilder.Register(&FlinkDeployment{}, &FlinkDeploymentList{})
}
