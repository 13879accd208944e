// Package kube provides Kubernetes-specific helpers for pushing built
// deployment specifications to the control plane.
package kube

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/Grypse/flink-kubernetes-operator/internal/deployment"
)

// FieldOwner identifies this operator in server-side-apply field management.
const FieldOwner = "flink-kubernetes-operator"

// DeployJobManagerSpec applies a built job-manager deployment specification:
// the auxiliary resources first, in their composed order, then the
// StatefulSet. Each object is created or replaced individually; the first
// failure aborts and the caller retries the whole specification.
func DeployJobManagerSpec(ctx context.Context, c client.Client, spec *deployment.JobManagerDeploymentSpec) error {
	for _, obj := range spec.Auxiliary {
		if err := CreateOrReplace(ctx, c, obj); err != nil {
			return err
		}
	}
	return CreateOrReplace(ctx, c, spec.StatefulSet)
}

// CreateOrReplace creates the object, or replaces the spec of the existing
// object with the desired state when it already exists. The resource
// version of the live object is carried over so the update does not race a
// concurrent writer blindly.
func CreateOrReplace(ctx context.Context, c client.Client, obj client.Object) error {
	err := c.Create(ctx, obj)
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create %s %s/%s: %w",
			obj.GetObjectKind().GroupVersionKind().Kind, obj.GetNamespace(), obj.GetName(), err)
	}

	existing := obj.DeepCopyObject().(client.Object)
	if err := c.Get(ctx, types.NamespacedName{Namespace: obj.GetNamespace(), Name: obj.GetName()}, existing); err != nil {
		return fmt.Errorf("failed to read existing %s %s/%s: %w",
			obj.GetObjectKind().GroupVersionKind().Kind, obj.GetNamespace(), obj.GetName(), err)
	}
	obj.SetResourceVersion(existing.GetResourceVersion())
	if err := c.Update(ctx, obj, client.FieldOwner(FieldOwner)); err != nil {
		return fmt.Errorf("failed to update %s %s/%s: %w",
			obj.GetObjectKind().GroupVersionKind().Kind, obj.GetNamespace(), obj.GetName(), err)
	}
	return nil
}
