package filesystem

import (
	"fmt"

	"github.com/jessifoo/rayzgyproc/pkg/models"
	"github.com/shirou/gopsutil/disk"
)

var getUsage = disk.Usage

// GetDiskUsage returns usage of the filesystem holding path
func GetDiskUsage(path string) (*models.DiskUsage, error) {
	usage, err := getUsage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage: %w", err)
	}

	return &models.DiskUsage{
		Path:        usage.Path,
		Total:       usage.Total,
		Free:        usage.Free,
		Used:        usage.Used,
		UsedPercent: usage.UsedPercent,
	}, nil
}
