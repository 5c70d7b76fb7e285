/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package poller

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/anarcher/kubernetes-external-secrets/api/v1alpha1"
	"github.com/anarcher/kubernetes-external-secrets/shared/events"
	"github.com/anarcher/kubernetes-external-secrets/test/utils"
)

// lifecycleEnv is a complete poller wired against a fake cluster, a fake
// backend, a fake clock, and an event bus with recording subscribers.
type lifecycleEnv struct {
	poller  *Poller
	backend *fakeBackend
	client  client.Client
	clock   *countingClock

	mu      sync.Mutex
	synced  int
	reasons []string
}

type lifecycleOptions struct {
	nsAnnotations map[string]string
	descriptor    v1alpha1.SecretDescriptor
	interceptors  *interceptor.Funcs
	objects       []client.Object
}

func newLifecycleEnv(now time.Time, opts lifecycleOptions) *lifecycleEnv {
	env := &lifecycleEnv{
		backend: &fakeBackend{data: map[string][]byte{"password": []byte("hunter2")}},
		clock:   newCountingClock(now),
	}

	builder := fake.NewClientBuilder().
		WithScheme(pollerScheme()).
		WithObjects(append([]client.Object{newNamespace(opts.nsAnnotations)}, opts.objects...)...)
	if opts.interceptors != nil {
		builder = builder.WithInterceptorFuncs(*opts.interceptors)
	}
	env.client = builder.Build()

	bus := events.NewEventBus(logr.Discard())
	events.Subscribe[events.SecretSynced](bus, func(_ context.Context, _ events.SecretSynced) error {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.synced++
		return nil
	})
	events.Subscribe[events.SecretSyncFailed](bus, func(_ context.Context, e events.SecretSyncFailed) error {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.reasons = append(env.reasons, e.Reason)
		return nil
	})

	env.poller = New(Options{
		Descriptor: opts.descriptor,
		Namespace:  testNamespace,
		Owner:      testOwner(),
		Interval:   testInterval,
		Upserter: &Upserter{
			Client: env.client,
			Builder: &Builder{
				Backends: newTestRegistry(env.backend),
				Clock:    env.clock,
			},
		},
		Bus:   bus,
		Log:   logr.Discard(),
		Clock: env.clock,
	})
	return env
}

func (e *lifecycleEnv) syncedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synced
}

func (e *lifecycleEnv) failureReasons() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.reasons...)
}

var _ = Describe("Poller lifecycle", func() {
	var (
		ctx context.Context
		now time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)
	})

	Context("when the managed Secret does not exist yet", func() {
		It("synchronizes immediately and stamps the build time", func() {
			env := newLifecycleEnv(now, lifecycleOptions{descriptor: testDescriptor()})

			By("starting without a forced poll")
			env.poller.Start(ctx, false)

			By("verifying the managed Secret was created")
			stored := &corev1.Secret{}
			key := types.NamespacedName{Name: "db-credentials", Namespace: testNamespace}
			Expect(env.client.Get(ctx, key, stored)).To(Succeed())
			Expect(stored.Data).To(HaveKeyWithValue("password", []byte("hunter2")))

			By("verifying the last-sync annotation carries the fake clock time")
			want := strconv.FormatInt(now.UnixMilli(), 10)
			Expect(stored.Annotations).To(HaveKeyWithValue(v1alpha1.AnnotationLastSync, want))

			By("verifying the outcome was published and the next cycle armed")
			Eventually(env.syncedCount).Should(Equal(1))
			Expect(env.clock.Armed()).To(Equal(1))
			Expect(env.clock.LastDelay()).To(Equal(testInterval))
		})
	})

	Context("when a fresh managed Secret survives a restart", func() {
		It("waits out the remainder of the period before syncing", func() {
			env := newLifecycleEnv(now, lifecycleOptions{
				descriptor: testDescriptor(),
				objects:    []client.Object{existingSecret(now.Add(-2 * time.Second))},
			})

			By("starting against a Secret synced 2s into a 5s period")
			env.poller.Start(ctx, false)
			Expect(env.backend.Calls()).To(BeZero())
			Expect(env.clock.LastDelay()).To(Equal(3 * time.Second))

			By("advancing just short of the deadline")
			env.clock.Step(2999 * time.Millisecond)
			Consistently(env.backend.Calls).Should(BeZero())

			By("crossing the deadline")
			env.clock.Step(time.Millisecond)
			Eventually(env.backend.Calls).Should(Equal(1))
			Eventually(env.syncedCount).Should(Equal(1))

			By("verifying the following cycle was armed for a full period")
			Eventually(env.clock.Armed).Should(Equal(2))
			Expect(env.clock.LastDelay()).To(Equal(testInterval))
		})
	})

	Context("when the cluster rejects every write", func() {
		It("keeps polling on the full interval", func() {
			funcs := interceptor.Funcs{
				Create: func(_ context.Context, _ client.WithWatch, _ client.Object, _ ...client.CreateOption) error {
					return apierrors.NewInternalError(errors.New("etcdserver: request timed out"))
				},
			}
			env := newLifecycleEnv(now, lifecycleOptions{
				descriptor:   testDescriptor(),
				interceptors: &funcs,
			})

			By("running a forced first cycle that fails")
			env.poller.Start(ctx, true)
			Expect(env.backend.Calls()).To(Equal(1))
			Eventually(env.failureReasons).Should(HaveLen(1))
			Expect(env.failureReasons()[0]).To(ContainSubstring("request timed out"))

			By("verifying the failure did not stop the schedule")
			Expect(env.clock.Armed()).To(Equal(1))
			Expect(env.clock.LastDelay()).To(Equal(testInterval))

			By("advancing a full period and observing a retry")
			env.clock.Step(testInterval)
			Eventually(env.backend.Calls).Should(Equal(2))
			Eventually(env.failureReasons).Should(HaveLen(2))
		})
	})

	Context("when the namespace does not permit the requested role", func() {
		It("denies the cycle before contacting the backend", func() {
			descriptor := utils.NewTestDescriptorWithRole("db-credentials", "whatever")
			env := newLifecycleEnv(now, lifecycleOptions{
				descriptor:    descriptor,
				nsAnnotations: map[string]string{v1alpha1.AnnotationPermittedKeyName: "^$"},
			})

			env.poller.Start(ctx, true)

			Expect(env.backend.Calls()).To(BeZero())
			Eventually(env.failureReasons).Should(HaveLen(1))
			Expect(env.failureReasons()[0]).To(ContainSubstring("does not permit role"))

			By("verifying the denied cycle still armed the next one")
			Expect(env.clock.Armed()).To(Equal(1))
		})
	})
})
