package naming

import (
	"testing"

	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
)

func TestResourceNames(t *testing.T) {
	const clusterID = "basic-session"

	if got := JobManagerStatefulSetName(clusterID); got != "basic-session" {
		t.Errorf("job manager StatefulSet name = %q, want %q", got, "basic-session")
	}
	if got := TaskManagerStatefulSetName(clusterID); got != "basic-session-taskmanager" {
		t.Errorf("task manager StatefulSet name = %q, want %q", got, "basic-session-taskmanager")
	}
	if got := InternalServiceName(clusterID); got != "basic-session" {
		t.Errorf("internal service name = %q, want %q", got, "basic-session")
	}
	if got := RestServiceName(clusterID); got != "basic-session-rest" {
		t.Errorf("rest service name = %q, want %q", got, "basic-session-rest")
	}
	if got := FlinkConfConfigMapName(clusterID); got != "flink-config-basic-session" {
		t.Errorf("flink conf ConfigMap name = %q, want %q", got, "flink-config-basic-session")
	}
}

func TestSelectorLabelsDistinguishComponents(t *testing.T) {
	jm := JobManagerSelectorLabels("c")
	tm := TaskManagerSelectorLabels("c")

	if jm[constants.LabelApp] != "c" || tm[constants.LabelApp] != "c" {
		t.Fatalf("both selectors must carry app=c, got %v and %v", jm, tm)
	}
	if jm[constants.LabelComponent] == tm[constants.LabelComponent] {
		t.Fatalf("job manager and task manager selectors must differ, both have component=%s", jm[constants.LabelComponent])
	}
}

func TestHAConfigMapLabels(t *testing.T) {
	labels := HAConfigMapLabels("c")
	if labels[constants.LabelApp] != "c" {
		t.Errorf("app label = %q, want %q", labels[constants.LabelApp], "c")
	}
	if labels[constants.LabelConfigMapType] != constants.LabelValueConfigMapTypeHA {
		t.Errorf("configmap-type label = %q, want %q", labels[constants.LabelConfigMapType], constants.LabelValueConfigMapTypeHA)
	}
}
