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

package metrics

import (
	// #nosec
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// zeusNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	zeusNamespace = "zeus"

	objectStreamSubsystem = "objectstream"
	snapshotSubsystem     = "snapshot"

	// 以下为当前使用的通用标签名。
	formatLabelName = "format"
	statusLabelName = "status"

	StatusSuccess = "success"
	StatusFault   = "fault"
)

var (
	// sizeBuckets 为会话输出大小的桶划分，单位为字节。
	sizeBuckets = []float64{128, 1024, 8192, 65536, 262144, 1048576, 8388608, 67108864, 268435456}

	SessionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: objectStreamSubsystem,
			Name:      "session_total",
			Help:      "序列化会话总数，按输出格式与结果状态分类",
		}, []string{formatLabelName, statusLabelName})

	ObjectRecordTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: objectStreamSubsystem,
			Name:      "object_record_total",
			Help:      "已写出的对象记录总数",
		})

	DeclareRecordTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: objectStreamSubsystem,
			Name:      "declare_record_total",
			Help:      "已写出的类型声明记录总数",
		})

	StreamFaultTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: objectStreamSubsystem,
			Name:      "stream_fault_total",
			Help:      "底层输出流发生故障的次数，按输出格式分类",
		}, []string{formatLabelName})

	SessionOutputBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: zeusNamespace,
			Subsystem: objectStreamSubsystem,
			Name:      "session_output_bytes",
			Help:      "单次序列化会话写出的字节数分布",
			Buckets:   sizeBuckets,
		}, []string{formatLabelName})

	SnapshotSaveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: zeusNamespace,
			Subsystem: snapshotSubsystem,
			Name:      "save_total",
			Help:      "快照保存操作总数，按结果状态分类",
		}, []string{statusLabelName})

	SnapshotSaveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: zeusNamespace,
			Subsystem: snapshotSubsystem,
			Name:      "save_duration_milliseconds",
			Help:      "快照保存耗时分布，单位毫秒",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标。
// 通常应在 init 函数中调用。
func Register(r prometheus.Registerer) {
	r.MustRegister(SessionTotal)
	r.MustRegister(ObjectRecordTotal)
	r.MustRegister(DeclareRecordTotal)
	r.MustRegister(StreamFaultTotal)
	r.MustRegister(SessionOutputBytes)
	r.MustRegister(SnapshotSaveTotal)
	r.MustRegister(SnapshotSaveDuration)
	metricRegisterer = r
}
