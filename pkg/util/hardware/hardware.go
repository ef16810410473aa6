// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hardware

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/lk2023060901/objectstream-go/pkg/log"
)

var (
	cpuNum     int
	cpuNumOnce sync.Once
)

// GetCPUNum returns the count of cpu cores visible to the process.
func GetCPUNum() int {
	cpuNumOnce.Do(func() {
		counts, err := cpu.Counts(true)
		if err != nil || counts <= 0 {
			log.Warn("failed to get cpu counts from gopsutil, fallback to runtime.NumCPU",
				zap.Int("counts", counts), zap.Error(err))
			counts = runtime.NumCPU()
		}
		cpuNum = counts
	})
	return cpuNum
}

// GetMemoryCount returns the size of system memory in bytes.
// It returns 0 when the virtual memory stat is unavailable.
func GetMemoryCount() uint64 {
	stats, err := mem.VirtualMemory()
	if err != nil {
		log.Warn("failed to get memory stats from gopsutil", zap.Error(err))
		return 0
	}
	return stats.Total
}
