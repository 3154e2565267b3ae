package collector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourceType identifies one resource type to dump per namespace.
type ResourceType struct {
	Resource string `yaml:"resource"`
	Group    string `yaml:"group"`
	Version  string `yaml:"version"`
}

// GroupVersionResource converts the type to the form the dynamic client uses.
func (r ResourceType) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: r.Group, Version: r.Version, Resource: r.Resource}
}

// Config holds the collector's tunable values.
type Config struct {
	// IgnoredNamespaces are management-cluster namespaces to skip entirely.
	IgnoredNamespaces []string `yaml:"ignoredNamespaces"`

	// CAPIResourceTypes are dumped per non-ignored namespace, in order.
	CAPIResourceTypes []ResourceType `yaml:"capiResourceTypes"`
}

// DefaultConfig returns the built-in ignore set and Cluster API resource
// types, covering core CAPI, the kubeadm control plane, and the OpenStack
// infrastructure provider.
func DefaultConfig() Config {
	capi := "cluster.x-k8s.io"
	return Config{
		IgnoredNamespaces: []string{
			"kube-system",
			"kube-public",
			"kube-node-lease",
		},
		CAPIResourceTypes: []ResourceType{
			{Resource: "clusters", Group: capi, Version: "v1beta1"},
			{Resource: "machines", Group: capi, Version: "v1beta1"},
			{Resource: "machinedeployments", Group: capi, Version: "v1beta1"},
			{Resource: "machinesets", Group: capi, Version: "v1beta1"},
			{Resource: "machinehealthchecks", Group: capi, Version: "v1beta1"},
			{Resource: "kubeadmcontrolplanes", Group: "controlplane.cluster.x-k8s.io", Version: "v1beta1"},
			{Resource: "openstackclusters", Group: "infrastructure.cluster.x-k8s.io", Version: "v1beta1"},
			{Resource: "openstackmachines", Group: "infrastructure.cluster.x-k8s.io", Version: "v1beta1"},
		},
	}
}

// LoadConfig reads a YAML config file. Fields left empty in the file keep
// their defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if file.IgnoredNamespaces != nil {
		cfg.IgnoredNamespaces = file.IgnoredNamespaces
	}
	if file.CAPIResourceTypes != nil {
		cfg.CAPIResourceTypes = file.CAPIResourceTypes
	}

	for _, rt := range cfg.CAPIResourceTypes {
		if rt.Resource == "" {
			return Config{}, fmt.Errorf("config %s: resource type with empty resource name", path)
		}
		if rt.Version == "" {
			return Config{}, fmt.Errorf("config %s: resource type %s has no version", path, rt.Resource)
		}
	}

	return cfg, nil
}

// Ignored reports whether a namespace is in the ignore set.
func (c Config) Ignored(namespace string) bool {
	for _, ns := range c.IgnoredNamespaces {
		if ns == namespace {
			return true
		}
	}
	return false
}
