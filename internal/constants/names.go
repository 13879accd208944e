package constants

// Resource name suffixes used by the operator when creating per-cluster resources.
const (
	SuffixTaskManager     = "-taskmanager"
	SuffixRestService     = "-rest"
	SuffixConfigMapPrefix = "flink-config-"
)

// Well-known container, volume, and file names shared between the
// composition pipeline and the lifecycle service.
const (
	MainContainerName = "flink-main-container"

	FlinkConfVolume     = "flink-config-volume"
	HadoopConfVolume    = "hadoop-config-volume"
	KerberosKeytabVol   = "kerberos-keytab-volume"
	KerberosKrb5ConfVol = "kerberos-krb5conf-volume"
	UserLibVolume       = "user-artifacts-volume"

	FlinkConfFile       = "flink-conf.yaml"
	Log4jConsoleFile    = "log4j-console.properties"
	LogbackConsoleFile  = "logback-console.xml"
	KerberosKeytabFile  = "krb5.keytab"
	KerberosKrb5ConFile = "krb5.conf"
)

// Well-known mount paths inside the Flink image.
const (
	FlinkConfDir      = "/opt/flink/conf"
	HadoopConfDir     = "/opt/hadoop/conf"
	KerberosKeytabDir = "/opt/kerberos/keytab"
	UserLibDir        = "/opt/flink/usrlib"
)
