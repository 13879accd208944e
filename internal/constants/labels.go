package constants

// Common Kubernetes label keys used by the operator.
const (
	LabelApp       = "app"
	LabelType      = "type"
	LabelComponent = "component"

	LabelConfigMapType = "configmap-type"
)

// Common label values used by the operator.
const (
	LabelValueTypeNative = "flink-native-kubernetes"

	LabelValueComponentJobManager  = "jobmanager"
	LabelValueComponentTaskManager = "taskmanager"

	// LabelValueConfigMapTypeHA marks the ConfigMaps Flink uses for
	// leader election and checkpoint pointers when Kubernetes HA is on.
	LabelValueConfigMapTypeHA = "high-availability"
)
