// Package collector gathers diagnostic logs and resource dumps from a
// management cluster and its Cluster API workload clusters into a local
// output directory. Every per-item failure is a warning, never a run
// failure: a partially-populated output directory is still useful for
// debugging.
package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/canonical/capi-log-collector/internal/logging"
	"github.com/canonical/capi-log-collector/pkg/cluster"
)

// kubeconfigSecretKey is the field CAPI providers store the workload
// kubeconfig under in the <cluster>-kubeconfig secret.
const kubeconfigSecretKey = "value"

const kubeconfigSuffix = "-kubeconfig"

// Collector performs one collection run against a management cluster.
type Collector struct {
	// Backend is the management cluster.
	Backend cluster.Backend

	// Connect opens backends for workload clusters from saved kubeconfig
	// files. Defaults to connecting with client-go.
	Connect cluster.Connect

	// OutputDir receives all collected files. Created if absent.
	OutputDir string

	// Config holds the ignore set and the CAPI resource types to dump.
	Config Config

	// Progress enables a progress bar over the namespace loop.
	Progress bool

	warnings int
}

// New creates a Collector with the default workload-cluster connector.
func New(backend cluster.Backend, cfg Config, outputDir string) *Collector {
	return &Collector{
		Backend: backend,
		Connect: func(kubeconfigPath string) (cluster.Backend, error) {
			return cluster.New(kubeconfigPath)
		},
		OutputDir: outputDir,
		Config:    cfg,
	}
}

// Run executes the full collection sequence. It returns an error only when
// the output directory cannot be created; everything else is best effort.
func (c *Collector) Run(ctx context.Context) error {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", c.OutputDir, err)
	}

	c.collectKubeconfigs(ctx)
	c.collectWorkloadClusters(ctx)
	c.collectManagementCluster(ctx)

	if c.warnings > 0 {
		logging.Info("collection finished with %d warning(s)", c.warnings)
	} else {
		logging.Info("collection finished")
	}
	return nil
}

// Warnings returns the number of warnings emitted during Run.
func (c *Collector) Warnings() int {
	return c.warnings
}

func (c *Collector) warn(format string, args ...interface{}) {
	c.warnings++
	logging.Warn(format, args...)
}

func (c *Collector) writeFile(name string, data []byte, mode os.FileMode) error {
	return os.WriteFile(filepath.Join(c.OutputDir, name), data, mode)
}

// collectKubeconfigs discovers CAPI clusters and saves each cluster's
// kubeconfig secret to <output>/<cluster>-kubeconfig.
func (c *Collector) collectKubeconfigs(ctx context.Context) {
	clusters, err := c.Backend.Clusters(ctx)
	if err != nil {
		c.warn("listing CAPI clusters: %v", err)
		return
	}
	if len(clusters) == 0 {
		logging.Info("no CAPI clusters found")
		return
	}

	for _, cl := range clusters {
		data, err := c.Backend.SecretField(ctx, cl.Namespace, cl.Name+kubeconfigSuffix, kubeconfigSecretKey)
		if err != nil {
			c.warn("fetching kubeconfig for cluster %s/%s: %v", cl.Namespace, cl.Name, err)
			continue
		}
		if err := c.writeFile(cl.Name+kubeconfigSuffix, data, 0o600); err != nil {
			c.warn("writing kubeconfig for cluster %s/%s: %v", cl.Namespace, cl.Name, err)
			continue
		}
		logging.Info("saved kubeconfig for cluster %s/%s", cl.Namespace, cl.Name)
	}
}

// collectWorkloadClusters dumps pods, nodes, and per-pod logs for every
// workload cluster that has a saved kubeconfig.
func (c *Collector) collectWorkloadClusters(ctx context.Context) {
	paths, err := filepath.Glob(filepath.Join(c.OutputDir, "*"+kubeconfigSuffix))
	if err != nil {
		c.warn("globbing kubeconfig files: %v", err)
		return
	}

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), kubeconfigSuffix)
		backend, err := c.Connect(path)
		if err != nil {
			c.warn("connecting to workload cluster %s: %v", name, err)
			continue
		}
		c.dumpWorkloadCluster(ctx, backend, name)
	}
}

func (c *Collector) dumpWorkloadCluster(ctx context.Context, backend cluster.Backend, name string) {
	logging.Info("collecting from workload cluster %s", name)

	if data, err := backend.PodsYAML(ctx, ""); err != nil {
		c.warn("dumping pods for workload cluster %s: %v", name, err)
	} else if err := c.writeFile(name+"-workload-pods.yaml", data, 0o644); err != nil {
		c.warn("writing pod dump for workload cluster %s: %v", name, err)
	}

	if data, err := backend.NodesYAML(ctx); err != nil {
		c.warn("dumping nodes for workload cluster %s: %v", name, err)
	} else if err := c.writeFile(name+"-workload-nodes.yaml", data, 0o644); err != nil {
		c.warn("writing node dump for workload cluster %s: %v", name, err)
	}

	pods, err := backend.Pods(ctx, "")
	if err != nil {
		c.warn("listing pods for workload cluster %s: %v", name, err)
		return
	}
	for _, pod := range pods {
		c.savePodLogs(ctx, backend, pod, name+"-"+pod.Name+".log")
	}
}

// collectManagementCluster dumps pods, per-pod logs, and the configured CAPI
// resource types for every non-ignored namespace.
func (c *Collector) collectManagementCluster(ctx context.Context) {
	namespaces, err := c.Backend.Namespaces(ctx)
	if err != nil {
		c.warn("listing namespaces: %v", err)
		return
	}

	var bar *logging.Progress
	if c.Progress {
		bar = logging.NewProgress(len(namespaces), "namespaces")
	}

	for _, ns := range namespaces {
		if c.Config.Ignored(ns) {
			logging.Skip("namespace %s is ignored", ns)
		} else {
			c.dumpNamespace(ctx, ns)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Complete()
	}
}

func (c *Collector) dumpNamespace(ctx context.Context, ns string) {
	logging.Info("collecting from namespace %s", ns)

	if data, err := c.Backend.PodsYAML(ctx, ns); err != nil {
		c.warn("dumping pods in namespace %s: %v", ns, err)
	} else if err := c.writeFile(ns+"-po.yaml", data, 0o644); err != nil {
		c.warn("writing pod dump for namespace %s: %v", ns, err)
	}

	pods, err := c.Backend.Pods(ctx, ns)
	if err != nil {
		c.warn("listing pods in namespace %s: %v", ns, err)
	} else {
		for _, pod := range pods {
			c.savePodLogs(ctx, c.Backend, pod, pod.Name+".log")
		}
	}

	for _, rt := range c.Config.CAPIResourceTypes {
		data, err := c.Backend.ResourceYAML(ctx, ns, rt.GroupVersionResource())
		if err != nil {
			c.warn("dumping %s in namespace %s: %v", rt.Resource, ns, err)
			continue
		}
		if err := c.writeFile(ns+"-"+rt.Resource+".yaml", data, 0o644); err != nil {
			c.warn("writing %s dump for namespace %s: %v", rt.Resource, ns, err)
		}
	}
}

func (c *Collector) savePodLogs(ctx context.Context, backend cluster.Backend, pod cluster.PodRef, filename string) {
	logs, err := backend.PodLogs(ctx, pod.Namespace, pod.Name)
	if err != nil {
		c.warn("fetching logs for pod %s/%s: %v", pod.Namespace, pod.Name, err)
		return
	}
	if err := c.writeFile(filename, []byte(logs), 0o644); err != nil {
		c.warn("writing logs for pod %s/%s: %v", pod.Namespace, pod.Name, err)
	}
}
