package deployment

import (
	"reflect"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/config"
	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

func sessionDeployment() *flinkv1alpha1.FlinkDeployment {
	return &flinkv1alpha1.FlinkDeployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "basic-session",
			Namespace: "flink",
			UID:       "uid-1234",
		},
		Spec: flinkv1alpha1.FlinkDeploymentSpec{
			Image: "flink:1.17",
			JobManager: &flinkv1alpha1.JobManagerSpec{
				Resource: corev1.ResourceRequirements{
					Requests: corev1.ResourceList{
						corev1.ResourceCPU:    resource.MustParse("1"),
						corev1.ResourceMemory: resource.MustParse("2Gi"),
					},
				},
			},
		},
	}
}

func mustParams(t *testing.T, dep *flinkv1alpha1.FlinkDeployment, cfg config.Configuration) JobManagerParameters {
	t.Helper()
	params, err := NewJobManagerParameters(dep, cfg)
	if err != nil {
		t.Fatalf("build parameters: %v", err)
	}
	return params
}

func TestBuildJobManagerDeploymentSpec_StatefulSetShape(t *testing.T) {
	dep := sessionDeployment()
	params := mustParams(t, dep, config.BuildFrom(dep))

	spec, err := BuildJobManagerDeploymentSpec(NewPodTemplate(), nil, params)
	if err != nil {
		t.Fatalf("build deployment spec: %v", err)
	}

	sts := spec.StatefulSet
	if sts.Name != "basic-session" {
		t.Errorf("StatefulSet name = %q, want the cluster id", sts.Name)
	}
	if sts.Namespace != "flink" {
		t.Errorf("StatefulSet namespace = %q", sts.Namespace)
	}
	if sts.Spec.ServiceName != "basic-session" {
		t.Errorf("service name = %q, want the headless service", sts.Spec.ServiceName)
	}
	if sts.Spec.Replicas == nil || *sts.Spec.Replicas != 1 {
		t.Errorf("replicas = %v, want 1", sts.Spec.Replicas)
	}

	// The selector must be satisfied by the template labels.
	for k, v := range sts.Spec.Selector.MatchLabels {
		if sts.Spec.Template.Labels[k] != v {
			t.Errorf("template labels missing selector entry %s=%s", k, v)
		}
	}

	if len(sts.Spec.Template.Spec.Containers) != 1 {
		t.Fatalf("container count = %d, want 1", len(sts.Spec.Template.Spec.Containers))
	}
	main := sts.Spec.Template.Spec.Containers[0]
	if main.Name != constants.MainContainerName {
		t.Errorf("main container name = %q", main.Name)
	}
	if main.Image != "flink:1.17" {
		t.Errorf("main container image = %q", main.Image)
	}
	if !reflect.DeepEqual(main.Args, []string{"jobmanager"}) {
		t.Errorf("session cluster args = %v, want [jobmanager]", main.Args)
	}
	if len(main.Ports) != 3 {
		t.Errorf("port count = %d, want rest, rpc, blob", len(main.Ports))
	}

	if len(sts.Spec.VolumeClaimTemplates) != 0 {
		t.Errorf("VolumeClaimTemplates must be absent when no claims are given, got %d", len(sts.Spec.VolumeClaimTemplates))
	}

	if len(sts.OwnerReferences) != 1 || sts.OwnerReferences[0].UID != "uid-1234" {
		t.Errorf("owner reference not carried: %v", sts.OwnerReferences)
	}
}

func TestBuildJobManagerDeploymentSpec_AuxiliaryResources(t *testing.T) {
	dep := sessionDeployment()
	params := mustParams(t, dep, config.BuildFrom(dep))

	spec, err := BuildJobManagerDeploymentSpec(NewPodTemplate(), nil, params)
	if err != nil {
		t.Fatalf("build deployment spec: %v", err)
	}

	if len(spec.Auxiliary) != 3 {
		t.Fatalf("auxiliary count = %d, want internal service, rest service, configmap", len(spec.Auxiliary))
	}

	internal, ok := spec.Auxiliary[0].(*corev1.Service)
	if !ok || internal.Name != "basic-session" {
		t.Fatalf("auxiliary[0] = %T %q, want the internal service", spec.Auxiliary[0], spec.Auxiliary[0].GetName())
	}
	if internal.Spec.ClusterIP != corev1.ClusterIPNone {
		t.Errorf("internal service must be headless, got clusterIP %q", internal.Spec.ClusterIP)
	}

	rest, ok := spec.Auxiliary[1].(*corev1.Service)
	if !ok || rest.Name != "basic-session-rest" {
		t.Fatalf("auxiliary[1] = %T %q, want the rest service", spec.Auxiliary[1], spec.Auxiliary[1].GetName())
	}
	if rest.Spec.Type != corev1.ServiceTypeClusterIP {
		t.Errorf("rest service type = %q, want the default ClusterIP", rest.Spec.Type)
	}

	configMap, ok := spec.Auxiliary[2].(*corev1.ConfigMap)
	if !ok || configMap.Name != naming.FlinkConfConfigMapName("basic-session") {
		t.Fatalf("auxiliary[2] = %T %q, want the flink-conf ConfigMap", spec.Auxiliary[2], spec.Auxiliary[2].GetName())
	}
	conf := configMap.Data[constants.FlinkConfFile]
	if !strings.Contains(conf, "kubernetes.cluster-id: basic-session") {
		t.Errorf("flink-conf.yaml missing cluster id:\n%s", conf)
	}
	if configMap.Data[constants.Log4jConsoleFile] == "" {
		t.Error("log4j console configuration missing from ConfigMap")
	}
	if configMap.Data[constants.LogbackConsoleFile] == "" {
		t.Error("logback console configuration missing from ConfigMap")
	}
}

func TestBuildJobManagerDeploymentSpec_RestServiceTypeConfigurable(t *testing.T) {
	dep := sessionDeployment()
	cfg := config.BuildFrom(dep)
	cfg[config.KeyRestServiceType] = "LoadBalancer"
	params := mustParams(t, dep, cfg)

	spec, err := BuildJobManagerDeploymentSpec(NewPodTemplate(), nil, params)
	if err != nil {
		t.Fatalf("build deployment spec: %v", err)
	}
	rest := spec.Auxiliary[1].(*corev1.Service)
	if rest.Spec.Type != corev1.ServiceTypeLoadBalancer {
		t.Errorf("rest service type = %q, want LoadBalancer", rest.Spec.Type)
	}
}

func TestBuildJobManagerDeploymentSpec_Deterministic(t *testing.T) {
	dep := sessionDeployment()
	params := mustParams(t, dep, config.BuildFrom(dep))

	first, err := BuildJobManagerDeploymentSpec(NewPodTemplate(), nil, params)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := BuildJobManagerDeploymentSpec(NewPodTemplate(), nil, params)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if !reflect.DeepEqual(first.StatefulSet, second.StatefulSet) {
		t.Error("composing twice from the same inputs produced different StatefulSets")
	}
	if !reflect.DeepEqual(first.Auxiliary, second.Auxiliary) {
		t.Error("composing twice from the same inputs produced different auxiliary resources")
	}
}

func TestCompose_DoesNotMutateInput(t *testing.T) {
	dep := sessionDeployment()
	params := mustParams(t, dep, config.BuildFrom(dep))

	input := NewPodTemplate()
	if _, _, err := Compose(input, JobManagerDecorators(params)); err != nil {
		t.Fatalf("compose: %v", err)
	}

	if !reflect.DeepEqual(input, NewPodTemplate()) {
		t.Error("composition mutated the caller's template")
	}
}

func TestCompose_EmptyChainIsIdentity(t *testing.T) {
	input := NewPodTemplate()
	input.MainContainer.Image = "flink:1.17"

	pod, auxiliary, err := Compose(input, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !reflect.DeepEqual(pod, input) {
		t.Error("an empty chain must return the template unchanged")
	}
	if len(auxiliary) != 0 {
		t.Errorf("an empty chain must produce no auxiliary resources, got %d", len(auxiliary))
	}
}

func TestCompose_AbortsOnReservedVolumeConflict(t *testing.T) {
	dep := sessionDeployment()
	cfg := config.BuildFrom(dep)
	// "flink-config" produces the volume name the pipeline reserves for
	// its own configuration mount.
	cfg[config.KeySecretMounts] = "flink-config:/mnt/creds"
	params := mustParams(t, dep, cfg)

	_, _, err := Compose(NewPodTemplate(), JobManagerDecorators(params))
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if !operatorerrors.IsConfiguration(err) {
		t.Errorf("conflict must classify as a configuration error, got %v", err)
	}
}

func TestCompose_KerberosRequiresBothInputs(t *testing.T) {
	dep := sessionDeployment()
	cfg := config.BuildFrom(dep)
	cfg[config.KeyKerberosKeytabSecret] = "keytab-secret"
	params := mustParams(t, dep, cfg)

	_, _, err := Compose(NewPodTemplate(), JobManagerDecorators(params))
	if err == nil {
		t.Fatal("expected an error for keytab without krb5.conf")
	}
	if !operatorerrors.IsConfiguration(err) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestCompose_KerberosMountsKeytabAndKrb5Conf(t *testing.T) {
	dep := sessionDeployment()
	cfg := config.BuildFrom(dep)
	cfg[config.KeyKerberosKeytabSecret] = "keytab-secret"
	cfg[config.KeyKerberosKrb5ConfigMap] = "krb5-conf"
	params := mustParams(t, dep, cfg)

	pod, _, err := Compose(NewPodTemplate(), JobManagerDecorators(params))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	var keytab *corev1.Volume
	for i := range pod.Pod.Spec.Volumes {
		if pod.Pod.Spec.Volumes[i].Name == constants.KerberosKeytabVol {
			keytab = &pod.Pod.Spec.Volumes[i]
		}
	}
	if keytab == nil {
		t.Fatal("keytab volume missing")
	}
	if keytab.Secret == nil || keytab.Secret.SecretName != "keytab-secret" {
		t.Fatalf("keytab volume source = %+v, want the keytab secret", keytab.VolumeSource)
	}
	if len(keytab.Secret.Items) != 1 ||
		keytab.Secret.Items[0].Key != constants.KerberosKeytabFile ||
		keytab.Secret.Items[0].Path != constants.KerberosKeytabFile {
		t.Errorf("keytab items = %v, want the %s entry", keytab.Secret.Items, constants.KerberosKeytabFile)
	}

	var keytabMount bool
	for _, m := range pod.MainContainer.VolumeMounts {
		if m.Name == constants.KerberosKeytabVol && m.MountPath == constants.KerberosKeytabDir {
			keytabMount = true
		}
	}
	if !keytabMount {
		t.Errorf("keytab not mounted at %s", constants.KerberosKeytabDir)
	}
}

func TestCompose_ApplicationClusterCommandAndUserLib(t *testing.T) {
	dep := sessionDeployment()
	dep.Spec.Job = &flinkv1alpha1.JobSpec{
		JarURI:      "local:///opt/flink/usrlib/job.jar",
		EntryClass:  "org.example.Main",
		Args:        []string{"--input", "s3://bucket/in"},
		Parallelism: 2,
	}
	params := mustParams(t, dep, config.BuildFrom(dep))

	pod, _, err := Compose(NewPodTemplate(), JobManagerDecorators(params))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	want := []string{"standalone-job", "--job-classname", "org.example.Main", "--input", "s3://bucket/in"}
	if !reflect.DeepEqual(pod.MainContainer.Args, want) {
		t.Errorf("args = %v, want %v", pod.MainContainer.Args, want)
	}

	var userLib *corev1.Volume
	for i := range pod.Pod.Spec.Volumes {
		if pod.Pod.Spec.Volumes[i].Name == constants.UserLibVolume {
			userLib = &pod.Pod.Spec.Volumes[i]
		}
	}
	if userLib == nil {
		t.Fatal("application cluster must mount the user artifact volume")
	}
	if userLib.EmptyDir == nil {
		t.Error("user artifact volume must be an emptyDir")
	}
}

func TestCompose_SessionClusterHasNoUserLib(t *testing.T) {
	dep := sessionDeployment()
	params := mustParams(t, dep, config.BuildFrom(dep))

	pod, _, err := Compose(NewPodTemplate(), JobManagerDecorators(params))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for _, v := range pod.Pod.Spec.Volumes {
		if v.Name == constants.UserLibVolume {
			t.Error("session cluster must not mount the user artifact volume")
		}
	}
}

func TestCompose_HadoopAndEnvSecrets(t *testing.T) {
	dep := sessionDeployment()
	cfg := config.BuildFrom(dep)
	cfg[config.KeyHadooopConfConfigMap] = "hadoop-conf"
	cfg[config.KeyEnvSecrets] = "env:S3_KEY,secret:s3-creds,key:access-key"
	params := mustParams(t, dep, cfg)

	pod, _, err := Compose(NewPodTemplate(), JobManagerDecorators(params))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	var hadoopEnv, secretEnv bool
	for _, env := range pod.MainContainer.Env {
		switch env.Name {
		case constants.EnvHadoopConfDir:
			hadoopEnv = true
		case "S3_KEY":
			secretEnv = env.ValueFrom != nil &&
				env.ValueFrom.SecretKeyRef != nil &&
				env.ValueFrom.SecretKeyRef.Name == "s3-creds" &&
				env.ValueFrom.SecretKeyRef.Key == "access-key"
		}
	}
	if !hadoopEnv {
		t.Error("HADOOP_CONF_DIR not exported")
	}
	if !secretEnv {
		t.Error("env-from-secret entry not wired to the secret key")
	}
}

func TestBuildJobManagerDeploymentSpec_VolumeClaims(t *testing.T) {
	dep := sessionDeployment()
	params := mustParams(t, dep, config.BuildFrom(dep))

	claims := []corev1.PersistentVolumeClaim{
		{ObjectMeta: metav1.ObjectMeta{Name: "state"}},
	}
	spec, err := BuildJobManagerDeploymentSpec(NewPodTemplate(), claims, params)
	if err != nil {
		t.Fatalf("build deployment spec: %v", err)
	}
	if len(spec.StatefulSet.Spec.VolumeClaimTemplates) != 1 {
		t.Fatalf("VolumeClaimTemplates count = %d, want 1", len(spec.StatefulSet.Spec.VolumeClaimTemplates))
	}
}

func TestBuildJobManagerDeploymentSpec_KeepsSidecars(t *testing.T) {
	dep := sessionDeployment()
	params := mustParams(t, dep, config.BuildFrom(dep))

	template := NewPodTemplate()
	template.Pod.Spec.Containers = []corev1.Container{{Name: "fluent-bit", Image: "fluent/fluent-bit"}}

	spec, err := BuildJobManagerDeploymentSpec(template, nil, params)
	if err != nil {
		t.Fatalf("build deployment spec: %v", err)
	}
	containers := spec.StatefulSet.Spec.Template.Spec.Containers
	if len(containers) != 2 {
		t.Fatalf("container count = %d, want main container plus sidecar", len(containers))
	}
	if containers[0].Name != constants.MainContainerName {
		t.Errorf("main container must come first, got %q", containers[0].Name)
	}
	if containers[1].Name != "fluent-bit" {
		t.Errorf("sidecar lost, got %q", containers[1].Name)
	}
}
