//go:build e2e
// +build e2e

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

package e2e

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

const (
	pollTimeout  = 3 * time.Minute
	pollInterval = 2 * time.Second
)

var _ = Describe("standalone cluster lifecycle", Ordered, func() {
	const clusterName = "e2e-session"
	var namespace string

	BeforeAll(func() {
		namespace = "flink-e2e-" + time.Now().Format("150405")
		ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}}
		Expect(k8sClient.Create(ctx, ns)).To(Succeed())
	})

	AfterAll(func() {
		ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}}
		_ = k8sClient.Delete(ctx, ns)
	})

	It("deploys the cluster workloads for a new FlinkDeployment", func() {
		dep := &flinkv1alpha1.FlinkDeployment{
			ObjectMeta: metav1.ObjectMeta{Name: clusterName, Namespace: namespace},
			Spec: flinkv1alpha1.FlinkDeploymentSpec{
				Image: "flink:1.17",
				Mode:  flinkv1alpha1.DeploymentModeStandalone,
				FlinkConfiguration: map[string]string{
					"scheduler-mode":                "reactive",
					"taskmanager.numberOfTaskSlots": "2",
				},
				Job: &flinkv1alpha1.JobSpec{
					JarURI:      "local:///opt/flink/examples/streaming/StateMachineExample.jar",
					Parallelism: 2,
				},
			},
		}
		Expect(k8sClient.Create(ctx, dep)).To(Succeed())

		Eventually(func(g Gomega) {
			sts := &appsv1.StatefulSet{}
			g.Expect(k8sClient.Get(ctx, types.NamespacedName{Name: clusterName, Namespace: namespace}, sts)).To(Succeed())
			g.Expect(k8sClient.Get(ctx, types.NamespacedName{
				Name:      naming.TaskManagerStatefulSetName(clusterName),
				Namespace: namespace,
			}, sts)).To(Succeed())
		}, pollTimeout, pollInterval).Should(Succeed())

		svc := &corev1.Service{}
		Expect(k8sClient.Get(ctx, types.NamespacedName{
			Name:      naming.RestServiceName(clusterName),
			Namespace: namespace,
		}, svc)).To(Succeed())
	})

	It("scales the task managers when parallelism grows", func() {
		dep := &flinkv1alpha1.FlinkDeployment{}
		Expect(k8sClient.Get(ctx, types.NamespacedName{Name: clusterName, Namespace: namespace}, dep)).To(Succeed())
		dep.Spec.Job.Parallelism = 4
		Expect(k8sClient.Update(ctx, dep)).To(Succeed())

		Eventually(func(g Gomega) {
			sts := &appsv1.StatefulSet{}
			g.Expect(k8sClient.Get(ctx, types.NamespacedName{
				Name:      naming.TaskManagerStatefulSetName(clusterName),
				Namespace: namespace,
			}, sts)).To(Succeed())
			g.Expect(sts.Spec.Replicas).NotTo(BeNil())
			g.Expect(*sts.Spec.Replicas).To(Equal(int32(2)))
		}, pollTimeout, pollInterval).Should(Succeed())
	})

	It("tears the cluster down on deletion", func() {
		dep := &flinkv1alpha1.FlinkDeployment{
			ObjectMeta: metav1.ObjectMeta{Name: clusterName, Namespace: namespace},
		}
		Expect(k8sClient.Delete(ctx, dep)).To(Succeed())

		Eventually(func(g Gomega) {
			for _, name := range []string{clusterName, naming.TaskManagerStatefulSetName(clusterName)} {
				sts := &appsv1.StatefulSet{}
				err := k8sClient.Get(ctx, types.NamespacedName{Name: name, Namespace: namespace}, sts)
				g.Expect(apierrors.IsNotFound(err)).To(BeTrue(), "StatefulSet %s should be gone", name)
			}
		}, pollTimeout, pollInterval).Should(Succeed())
	})
})
