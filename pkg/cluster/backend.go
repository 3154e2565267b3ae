// Package cluster provides a narrow view of a Kubernetes cluster for
// diagnostics collection. The Backend interface covers exactly the calls the
// collector needs, so tests can substitute a fake cluster instead of a live
// API server.
package cluster

import (
	"context"
	"errors"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ErrNoResources is returned by ResourceYAML when a namespace holds no
// objects of the requested type (or the type is not installed at all).
var ErrNoResources = errors.New("no resources found")

// ClusterRef identifies a Cluster API managed cluster on the management
// cluster.
type ClusterRef struct {
	Namespace string
	Name      string
}

// PodRef identifies a pod.
type PodRef struct {
	Namespace string
	Name      string
}

// Backend is the capability surface the collector uses against a cluster.
type Backend interface {
	// Namespaces returns the names of all namespaces.
	Namespaces(ctx context.Context) ([]string, error)

	// Clusters returns all Cluster API cluster resources across all
	// namespaces.
	Clusters(ctx context.Context) ([]ClusterRef, error)

	// SecretField reads a single key from a secret.
	SecretField(ctx context.Context, namespace, name, key string) ([]byte, error)

	// Pods lists pods in a namespace; an empty namespace means all
	// namespaces.
	Pods(ctx context.Context, namespace string) ([]PodRef, error)

	// PodLogs returns the combined logs of all containers in a pod.
	PodLogs(ctx context.Context, namespace, name string) (string, error)

	// PodsYAML renders the pod list of a namespace (or all namespaces if
	// empty) as YAML.
	PodsYAML(ctx context.Context, namespace string) ([]byte, error)

	// NodesYAML renders the node list as YAML.
	NodesYAML(ctx context.Context) ([]byte, error)

	// ResourceYAML renders all objects of an arbitrary resource type in a
	// namespace as YAML. Returns ErrNoResources when there are none.
	ResourceYAML(ctx context.Context, namespace string, gvr schema.GroupVersionResource) ([]byte, error)
}

// Connect opens a Backend for the cluster a kubeconfig file points at.
// The collector uses it to reach workload clusters; tests substitute a fake.
type Connect func(kubeconfigPath string) (Backend, error)
