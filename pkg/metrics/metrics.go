// Package metrics 提供基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP：请求总数、耗时、并发数（由HTTP中间件记录）
//   - 会员业务：注册、登录、资料修改、头像存储、头像清理
//   - 基础组件：熔断器状态、Saga执行、消息发布
//
// 所有指标通过promauto注册到默认Registry，/metrics端点由Handler()暴露
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "playchat"

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，如/api/members/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// MemberSignUpsTotal 注册次数，标签result（success/failure）
	MemberSignUpsTotal *prometheus.CounterVec

	// MemberLoginsTotal 登录次数，标签result
	MemberLoginsTotal *prometheus.CounterVec

	// ProfileUpdatesTotal 资料修改次数，标签result
	ProfileUpdatesTotal *prometheus.CounterVec

	// ProfileImagesStoredTotal 头像存储次数，标签driver（local/minio）
	ProfileImagesStoredTotal *prometheus.CounterVec

	// ProfileImagesCleanedTotal 清理任务删除的孤立头像数
	ProfileImagesCleanedTotal prometheus.Counter

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数，标签name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// SagaExecutionsTotal Saga执行总数，标签saga、result
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaCompensationsTotal Saga补偿次数，标签saga
	SagaCompensationsTotal *prometheus.CounterVec

	// MessagesPublishedTotal 消息发布总数，标签exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标（可重复调用）
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			// 头像上传包含图片解码与缩放，上界放宽到10s
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	MemberSignUpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_signups_total",
			Help:      "会员注册次数",
		},
		[]string{"result"},
	)

	MemberLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_logins_total",
			Help:      "会员登录次数",
		},
		[]string{"result"},
	)

	ProfileUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_profile_updates_total",
			Help:      "会员资料修改次数",
		},
		[]string{"result"},
	)

	ProfileImagesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_images_stored_total",
			Help:      "头像存储次数",
		},
		[]string{"driver"},
	)

	ProfileImagesCleanedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_images_cleaned_total",
			Help:      "清理任务删除的孤立头像数",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_executions_total",
			Help:      "Saga执行总数",
		},
		[]string{"saga", "result"},
	)

	SagaCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_compensations_total",
			Help:      "Saga补偿执行总数",
		},
		[]string{"saga"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// Handler /metrics端点
func Handler() http.Handler {
	InitMetrics()
	return promhttp.Handler()
}

// Result 把error转换为result标签值
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordSignUp 记录一次注册
func RecordSignUp(err error) {
	InitMetrics()
	MemberSignUpsTotal.WithLabelValues(Result(err)).Inc()
}

// RecordLogin 记录一次登录
func RecordLogin(err error) {
	InitMetrics()
	MemberLoginsTotal.WithLabelValues(Result(err)).Inc()
}

// RecordProfileUpdate 记录一次资料修改
func RecordProfileUpdate(err error) {
	InitMetrics()
	ProfileUpdatesTotal.WithLabelValues(Result(err)).Inc()
}

// RecordImageStored 记录一次头像存储
func RecordImageStored(driver string) {
	InitMetrics()
	ProfileImagesStoredTotal.WithLabelValues(driver).Inc()
}

// RecordImagesCleaned 记录清理任务删除的文件数
func RecordImagesCleaned(n int) {
	InitMetrics()
	ProfileImagesCleanedTotal.Add(float64(n))
}

// SetCircuitBreakerState 更新熔断器状态
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerRequest 记录熔断器请求结果
func RecordCircuitBreakerRequest(name, result string) {
	InitMetrics()
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordSaga 记录一次Saga执行
func RecordSaga(name string, err error) {
	InitMetrics()
	SagaExecutionsTotal.WithLabelValues(name, Result(err)).Inc()
}

// RecordSagaCompensation 记录一次Saga补偿
func RecordSagaCompensation(name string) {
	InitMetrics()
	SagaCompensationsTotal.WithLabelValues(name).Inc()
}

// RecordMessagePublished 记录一次消息发布
func RecordMessagePublished(exchange, routingKey string, err error) {
	InitMetrics()
	MessagesPublishedTotal.WithLabelValues(exchange, routingKey, Result(err)).Inc()
}
