package constants

// Flink ports exposed by the job-manager role.
const (
	PortRest     = 8081
	PortRPC      = 6123
	PortBlob     = 6124
	PortNameRest = "rest"
	PortNameRPC  = "jobmanager-rpc"
	PortNameBlob = "blobserver"
)

// Environment variables consumed by the Flink entrypoint.
const (
	EnvFlinkPodIP     = "POD_IP"
	EnvHadoopConfDir  = "HADOOP_CONF_DIR"
	EnvKrb5ConfigPath = "KRB5_CONFIG"
)

// APIVersion strings for the resource kinds the operator emits.
const (
	APIVersionApps = "apps/v1"
	APIVersionCore = "v1"
)
