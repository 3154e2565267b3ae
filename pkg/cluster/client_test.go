package cluster

import (
	"context"
	"errors"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
)

func capiCluster(namespace, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "cluster.x-k8s.io/v1beta1",
			"kind":       "Cluster",
			"metadata": map[string]interface{}{
				"namespace": namespace,
				"name":      name,
			},
		},
	}
}

func newDynamicFake(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	scheme := runtime.NewScheme()
	listKinds := map[schema.GroupVersionResource]string{
		clusterGVR: "ClusterList",
	}
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, listKinds, objects...)
}

func TestClient_Namespaces(t *testing.T) {
	kube := fake.NewSimpleClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "team-a"}},
	)
	c := NewWithClients(kube, newDynamicFake())

	names, err := c.Namespaces(context.Background())
	if err != nil {
		t.Fatalf("Namespaces() error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("len(names) = %d, want 2", len(names))
	}
}

func TestClient_Clusters(t *testing.T) {
	dyn := newDynamicFake(
		capiCluster("ns-a", "cluster1"),
		capiCluster("ns-b", "cluster2"),
	)
	c := NewWithClients(fake.NewSimpleClientset(), dyn)

	refs, err := c.Clusters(context.Background())
	if err != nil {
		t.Fatalf("Clusters() error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	found := map[ClusterRef]bool{}
	for _, ref := range refs {
		found[ref] = true
	}
	if !found[(ClusterRef{Namespace: "ns-a", Name: "cluster1"})] {
		t.Errorf("missing cluster ns-a/cluster1 in %v", refs)
	}
}

func TestClient_SecretField(t *testing.T) {
	kube := fake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "ns-a", Name: "cluster1-kubeconfig"},
		Data:       map[string][]byte{"value": []byte("CONFIGDATA")},
	})
	c := NewWithClients(kube, newDynamicFake())
	ctx := context.Background()

	data, err := c.SecretField(ctx, "ns-a", "cluster1-kubeconfig", "value")
	if err != nil {
		t.Fatalf("SecretField() error: %v", err)
	}
	if string(data) != "CONFIGDATA" {
		t.Errorf("data = %q, want %q", data, "CONFIGDATA")
	}

	if _, err := c.SecretField(ctx, "ns-a", "cluster1-kubeconfig", "missing"); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := c.SecretField(ctx, "ns-a", "no-such-secret", "value"); err == nil {
		t.Error("expected error for missing secret")
	}
}

func TestClient_Pods(t *testing.T) {
	kube := fake.NewSimpleClientset(
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "podA"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: "other", Name: "podB"}},
	)
	c := NewWithClients(kube, newDynamicFake())
	ctx := context.Background()

	all, err := c.Pods(ctx, "")
	if err != nil {
		t.Fatalf("Pods() error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all namespaces: len = %d, want 2", len(all))
	}

	scoped, err := c.Pods(ctx, "default")
	if err != nil {
		t.Fatalf("Pods() error: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "podA" {
		t.Errorf("scoped pods = %v, want [default/podA]", scoped)
	}
}

func TestClient_PodLogs(t *testing.T) {
	kube := fake.NewSimpleClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "podA"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{Name: "app"},
				{Name: "sidecar"},
			},
		},
	})
	c := NewWithClients(kube, newDynamicFake())

	logs, err := c.PodLogs(context.Background(), "default", "podA")
	if err != nil {
		t.Fatalf("PodLogs() error: %v", err)
	}
	if !strings.Contains(logs, "--- container app ---") {
		t.Errorf("logs missing app section:\n%s", logs)
	}
	if !strings.Contains(logs, "--- container sidecar ---") {
		t.Errorf("logs missing sidecar section:\n%s", logs)
	}
}

func TestClient_PodLogsMissingPod(t *testing.T) {
	c := NewWithClients(fake.NewSimpleClientset(), newDynamicFake())
	if _, err := c.PodLogs(context.Background(), "default", "ghost"); err == nil {
		t.Error("expected error for missing pod")
	}
}

func TestClient_PodsYAML(t *testing.T) {
	kube := fake.NewSimpleClientset(
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "podA"}},
	)
	c := NewWithClients(kube, newDynamicFake())

	data, err := c.PodsYAML(context.Background(), "default")
	if err != nil {
		t.Fatalf("PodsYAML() error: %v", err)
	}
	if !strings.Contains(string(data), "kind: PodList") {
		t.Errorf("dump missing list kind:\n%s", data)
	}
	if !strings.Contains(string(data), "name: podA") {
		t.Errorf("dump missing pod name:\n%s", data)
	}
}

func TestClient_NodesYAML(t *testing.T) {
	kube := fake.NewSimpleClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1"}},
	)
	c := NewWithClients(kube, newDynamicFake())

	data, err := c.NodesYAML(context.Background())
	if err != nil {
		t.Fatalf("NodesYAML() error: %v", err)
	}
	if !strings.Contains(string(data), "kind: NodeList") {
		t.Errorf("dump missing list kind:\n%s", data)
	}
	if !strings.Contains(string(data), "name: node-1") {
		t.Errorf("dump missing node name:\n%s", data)
	}
}

func TestClient_ResourceYAML(t *testing.T) {
	dyn := newDynamicFake(capiCluster("ns-a", "cluster1"))
	c := NewWithClients(fake.NewSimpleClientset(), dyn)
	ctx := context.Background()

	data, err := c.ResourceYAML(ctx, "ns-a", clusterGVR)
	if err != nil {
		t.Fatalf("ResourceYAML() error: %v", err)
	}
	if !strings.Contains(string(data), "cluster1") {
		t.Errorf("dump missing cluster name:\n%s", data)
	}

	// A namespace with no objects of the type reports ErrNoResources.
	_, err = c.ResourceYAML(ctx, "empty-ns", clusterGVR)
	if !errors.Is(err, ErrNoResources) {
		t.Errorf("err = %v, want ErrNoResources", err)
	}
}
