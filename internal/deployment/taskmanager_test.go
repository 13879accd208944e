package deployment

import (
	"reflect"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/config"
	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

func TestReplicasForParallelism(t *testing.T) {
	tests := []struct {
		name        string
		parallelism int32
		slots       string
		want        int32
		wantErr     bool
	}{
		{name: "one slot per task manager", parallelism: 3, slots: "1", want: 3},
		{name: "exact division", parallelism: 4, slots: "2", want: 2},
		{name: "rounds up", parallelism: 5, slots: "2", want: 3},
		{name: "default slot count", parallelism: 2, slots: "", want: 2},
		{name: "parallelism below one clamps to one", parallelism: 0, slots: "2", want: 1},
		{name: "zero slots rejected", parallelism: 4, slots: "0", wantErr: true},
		{name: "garbage slots rejected", parallelism: 4, slots: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Configuration{}
			if tt.slots != "" {
				cfg[config.KeyTaskSlots] = tt.slots
			}
			got, err := ReplicasForParallelism(tt.parallelism, cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !operatorerrors.IsConfiguration(err) {
					t.Errorf("expected a configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("replicas: %v", err)
			}
			if got != tt.want {
				t.Errorf("replicas = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewTaskManagerParameters_Replicas(t *testing.T) {
	dep := &flinkv1alpha1.FlinkDeployment{
		ObjectMeta: metav1.ObjectMeta{Name: "c", Namespace: "ns"},
		Spec: flinkv1alpha1.FlinkDeploymentSpec{
			Image:       "flink:1.17",
			TaskManager: &flinkv1alpha1.TaskManagerSpec{Replicas: ptr.To(int32(3))},
		},
	}

	params, err := NewTaskManagerParameters(dep, config.BuildFrom(dep))
	if err != nil {
		t.Fatalf("build parameters: %v", err)
	}
	if params.Replicas != 3 {
		t.Errorf("replicas = %d, want the spec value 3", params.Replicas)
	}

	// Reactive mode derives the count from job parallelism instead.
	dep.Spec.Job = &flinkv1alpha1.JobSpec{Parallelism: 4}
	cfg := config.BuildFrom(dep)
	cfg[config.KeySchedulerMode] = config.SchedulerModeReactive
	cfg[config.KeyTaskSlots] = "2"
	params, err = NewTaskManagerParameters(dep, cfg)
	if err != nil {
		t.Fatalf("build parameters: %v", err)
	}
	if params.Replicas != 2 {
		t.Errorf("reactive replicas = %d, want 2", params.Replicas)
	}
}

func TestBuildTaskManagerStatefulSet(t *testing.T) {
	dep := &flinkv1alpha1.FlinkDeployment{
		ObjectMeta: metav1.ObjectMeta{Name: "basic-session", Namespace: "flink"},
		Spec:       flinkv1alpha1.FlinkDeploymentSpec{Image: "flink:1.17"},
	}
	params, err := NewTaskManagerParameters(dep, config.BuildFrom(dep))
	if err != nil {
		t.Fatalf("build parameters: %v", err)
	}

	sts := BuildTaskManagerStatefulSet(params)
	if sts.Name != "basic-session-taskmanager" {
		t.Errorf("name = %q, want the task manager suffix", sts.Name)
	}
	if sts.Spec.ServiceName != naming.InternalServiceName("basic-session") {
		t.Errorf("service name = %q, want the job-manager headless service", sts.Spec.ServiceName)
	}

	main := sts.Spec.Template.Spec.Containers[0]
	if !reflect.DeepEqual(main.Args, []string{"taskmanager"}) {
		t.Errorf("args = %v, want [taskmanager]", main.Args)
	}

	var confMounted bool
	for _, m := range main.VolumeMounts {
		if m.Name == constants.FlinkConfVolume && m.MountPath == constants.FlinkConfDir {
			confMounted = true
		}
	}
	if !confMounted {
		t.Error("task manager must mount the shared flink-conf volume")
	}

	for k, v := range sts.Spec.Selector.MatchLabels {
		if sts.Spec.Template.Labels[k] != v {
			t.Errorf("template labels missing selector entry %s=%s", k, v)
		}
	}
}
