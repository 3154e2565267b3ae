package cluster

import (
	"bytes"
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/yaml"
)

// clusterGVR is the Cluster API cluster resource.
var clusterGVR = schema.GroupVersionResource{
	Group:    "cluster.x-k8s.io",
	Version:  "v1beta1",
	Resource: "clusters",
}

// Client implements Backend against a live cluster using client-go.
type Client struct {
	kube kubernetes.Interface
	dyn  dynamic.Interface
}

// New connects to the cluster the given kubeconfig points at. An empty path
// falls back to the default kubeconfig location.
func New(kubeconfigPath string) (*Client, error) {
	if kubeconfigPath == "" {
		kubeconfigPath = clientcmd.NewDefaultClientConfigLoadingRules().GetDefaultFilename()
	}
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("building kubeconfig: %w", err)
	}
	kube, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("creating dynamic client: %w", err)
	}
	return &Client{kube: kube, dyn: dyn}, nil
}

// NewWithClients creates a Client using injected clients (for testing).
func NewWithClients(kube kubernetes.Interface, dyn dynamic.Interface) *Client {
	return &Client{kube: kube, dyn: dyn}
}

func (c *Client) Namespaces(ctx context.Context) ([]string, error) {
	list, err := c.kube.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	return names, nil
}

func (c *Client) Clusters(ctx context.Context) ([]ClusterRef, error) {
	list, err := c.dyn.Resource(clusterGVR).Namespace(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing CAPI clusters: %w", err)
	}
	refs := make([]ClusterRef, 0, len(list.Items))
	for _, item := range list.Items {
		refs = append(refs, ClusterRef{Namespace: item.GetNamespace(), Name: item.GetName()})
	}
	return refs, nil
}

func (c *Client) SecretField(ctx context.Context, namespace, name, key string) ([]byte, error) {
	secret, err := c.kube.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting secret %s/%s: %w", namespace, name, err)
	}
	data, ok := secret.Data[key]
	if !ok {
		return nil, fmt.Errorf("secret %s/%s has no key %q", namespace, name, key)
	}
	return data, nil
}

func (c *Client) Pods(ctx context.Context, namespace string) ([]PodRef, error) {
	list, err := c.kube.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing pods: %w", err)
	}
	refs := make([]PodRef, 0, len(list.Items))
	for _, pod := range list.Items {
		refs = append(refs, PodRef{Namespace: pod.Namespace, Name: pod.Name})
	}
	return refs, nil
}

// PodLogs fetches logs for every container in the pod and concatenates them
// with per-container headers, one section per container.
func (c *Client) PodLogs(ctx context.Context, namespace, name string) (string, error) {
	pod, err := c.kube.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("getting pod %s/%s: %w", namespace, name, err)
	}

	containers := make([]string, 0, len(pod.Spec.Containers)+len(pod.Spec.InitContainers))
	for _, ic := range pod.Spec.InitContainers {
		containers = append(containers, ic.Name)
	}
	for _, ct := range pod.Spec.Containers {
		containers = append(containers, ct.Name)
	}

	var buf bytes.Buffer
	for _, container := range containers {
		stream, err := c.kube.CoreV1().Pods(namespace).GetLogs(name, &corev1.PodLogOptions{
			Container: container,
		}).Stream(ctx)
		if err != nil {
			fmt.Fprintf(&buf, "--- container %s: error: %v\n", container, err)
			continue
		}
		fmt.Fprintf(&buf, "--- container %s ---\n", container)
		io.Copy(&buf, stream)
		stream.Close()
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

func (c *Client) PodsYAML(ctx context.Context, namespace string) ([]byte, error) {
	list, err := c.kube.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing pods: %w", err)
	}
	list.TypeMeta = metav1.TypeMeta{APIVersion: "v1", Kind: "PodList"}
	data, err := yaml.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("rendering pod list: %w", err)
	}
	return data, nil
}

func (c *Client) NodesYAML(ctx context.Context) ([]byte, error) {
	list, err := c.kube.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	list.TypeMeta = metav1.TypeMeta{APIVersion: "v1", Kind: "NodeList"}
	data, err := yaml.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("rendering node list: %w", err)
	}
	return data, nil
}

func (c *Client) ResourceYAML(ctx context.Context, namespace string, gvr schema.GroupVersionResource) ([]byte, error) {
	list, err := c.dyn.Resource(gvr).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", gvr.Resource, err)
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("%s in namespace %s: %w", gvr.Resource, namespace, ErrNoResources)
	}
	data, err := yaml.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("rendering %s list: %w", gvr.Resource, err)
	}
	return data, nil
}
