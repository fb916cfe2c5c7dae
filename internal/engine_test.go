package jnibind_test

import (
	"context"
	"errors"
	"sync"

	jnibind "github.com/jerbob92/jnibind/internal"
	"github.com/jerbob92/jnibind/jnitest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Engine", func() {
	var vm *jnitest.VM
	var env *jnitest.Env
	var engine jnibind.IEngine

	BeforeEach(func() {
		vm = jnitest.NewVM()
		defineFixtures(vm)
		env = vm.NewEnv()
		engine = jnibind.CreateEngine(jnibind.NewConfig().SetResolvePolicy(jnibind.ResolveInert))
	})

	Context("thread binding", func() {
		It("does not attach before Init", func() {
			ctx := engine.Attach(context.Background(), env)
			Expect(jnibind.CurrentEnv(ctx)).To(BeNil())

			_, err := jnibind.GetThreadFromContext(ctx)
			Expect(err).To(MatchError(jnibind.ErrNotAttached))
		})

		It("binds the execution context to the returned context", func() {
			engine.Init()
			engine.Init()
			Expect(engine.Initialized()).To(BeTrue())

			ctx := engine.Attach(context.Background(), env)
			Expect(jnibind.CurrentEnv(ctx)).To(BeIdenticalTo(env))
			Expect(jnibind.MustGetThreadFromContext(ctx).Engine()).To(BeIdenticalTo(engine))
		})

		It("keeps an existing binding", func() {
			engine.Init()
			ctx := engine.Attach(context.Background(), env)
			Expect(engine.Attach(ctx, vm.NewEnv())).To(Equal(ctx))
			Expect(jnibind.CurrentEnv(ctx)).To(BeIdenticalTo(env))
		})

		It("ignores a nil execution context", func() {
			engine.Init()
			ctx := engine.Attach(context.Background(), nil)
			Expect(jnibind.CurrentEnv(ctx)).To(BeNil())
		})

		It("detaches", func() {
			engine.Init()
			ctx := engine.Attach(context.Background(), env)
			engine.Detach(ctx)
			Expect(jnibind.CurrentEnv(ctx)).To(BeNil())

			_, err := widgetCount.Get(ctx, jnibind.Instance{})
			Expect(err).To(MatchError(jnibind.ErrNotAttached))
		})

		It("panics in MustGetThreadFromContext without a binding", func() {
			Expect(func() { jnibind.MustGetThreadFromContext(context.Background()) }).To(Panic())
		})

		It("gives every thread its own execution context", func() {
			engine.Init()

			var wg sync.WaitGroup
			envs := make([]jnibind.Env, 4)
			for i := range envs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ctx := engine.Attach(context.Background(), vm.NewEnv())
					envs[i] = jnibind.CurrentEnv(ctx)
				}(i)
			}
			wg.Wait()

			for i := range envs {
				Expect(envs[i]).ToNot(BeNil())
				for j := i + 1; j < len(envs); j++ {
					Expect(envs[i]).ToNot(BeIdenticalTo(envs[j]))
				}
			}
		})
	})

	Context("shutdown", func() {
		It("does nothing without an attached thread", func() {
			engine.Init()
			err := engine.Shutdown(context.Background())
			Expect(err).To(MatchError(jnibind.ErrNotAttached))
			Expect(vm.Stats().Invocations).To(Equal(0))
			Expect(engine.Initialized()).To(BeTrue())
		})

		It("releases every cached class reference exactly once", func() {
			engine.Init()
			ctx := engine.Attach(context.Background(), env)

			_, err := widgetClass.Resolve(ctx)
			Expect(err).To(BeNil())
			_, err = derivedClass.Resolve(ctx)
			Expect(err).To(BeNil())
			Expect(vm.LiveGlobalRefs()).To(Equal(2))
			Expect(engine.PendingReleases()).To(Equal(2))

			Expect(engine.Shutdown(ctx)).To(Succeed())
			Expect(vm.LiveGlobalRefs()).To(Equal(0))
			Expect(vm.Stats().GlobalRefsDeleted).To(Equal(2))
			Expect(vm.Stats().InvalidReleases).To(Equal(0))
			Expect(engine.PendingReleases()).To(Equal(0))

			Expect(jnibind.CurrentEnv(ctx)).To(BeNil())
			Expect(engine.Shutdown(ctx)).To(MatchError(jnibind.ErrNotAttached))
			Expect(vm.Stats().GlobalRefsDeleted).To(Equal(2))
		})

		It("can be initialized again", func() {
			engine.Init()
			ctx := engine.Attach(context.Background(), env)
			_, err := widgetClass.Resolve(ctx)
			Expect(err).To(BeNil())
			Expect(engine.Shutdown(ctx)).To(Succeed())

			engine.Init()
			Expect(jnibind.CurrentEnv(ctx)).To(BeNil())

			ctx = engine.Attach(context.Background(), env)
			_, err = widgetClass.Resolve(ctx)
			Expect(err).To(BeNil())
			Expect(vm.Lookups("class test/Widget")).To(Equal(2))
		})
	})

	Context("class resolver", func() {
		loadHidden := func(ctx context.Context, path string) jnibind.Ref {
			return jnibind.CurrentEnv(ctx).(*jnitest.Env).LoadClass(path)
		}

		It("is consulted when the default lookup fails", func() {
			engine.Init()
			engine.SetClassResolver(loadHidden)
			ctx := engine.Attach(context.Background(), env)

			Expect(hiddenValue.SetStatic(ctx, 42)).To(Succeed())
			Expect(hiddenValue.GetStatic(ctx)).To(Equal(int32(42)))
			Expect(env.PendingException()).To(BeEmpty())
		})

		It("can come from the config", func() {
			engine = jnibind.CreateEngine(jnibind.NewConfig().SetClassResolver(loadHidden))
			engine.Init()
			ctx := engine.Attach(context.Background(), env)

			_, err := hiddenClass.Resolve(ctx)
			Expect(err).To(BeNil())
		})

		It("is forgotten on shutdown", func() {
			engine.Init()
			engine.SetClassResolver(loadHidden)
			ctx := engine.Attach(context.Background(), env)
			Expect(engine.Shutdown(ctx)).To(Succeed())

			engine.Init()
			ctx = engine.Attach(context.Background(), env)
			_, err := hiddenClass.Resolve(ctx)
			Expect(err).To(MatchError(jnibind.ErrUnresolved))
		})
	})

	Context("resolution", func() {
		var ctx context.Context

		BeforeEach(func() {
			engine.Init()
			ctx = engine.Attach(context.Background(), env)
		})

		It("caches a failed class lookup", func() {
			inst := missingClass.Wrap(jnibind.Wrap(env.NewLocalRef(vm.Class("test/Widget").New())))

			value, err := missingField.Get(ctx, inst)
			Expect(value).To(Equal(int32(0)))
			Expect(err).To(MatchError(jnibind.ErrUnresolved))

			var resolutionErr *jnibind.ResolutionError
			Expect(errors.As(err, &resolutionErr)).To(BeTrue())
			Expect(resolutionErr.Error()).To(Equal("failed to find class: test/Missing"))

			_, err = missingField.Get(ctx, inst)
			Expect(err).To(MatchError(jnibind.ErrUnresolved))
			Expect(errors.As(err, &resolutionErr)).To(BeTrue())
			Expect(resolutionErr.Error()).To(Equal("failed to find class: test/Missing"))
			Expect(vm.Lookups("class test/Missing")).To(Equal(1))
			Expect(env.PendingException()).To(BeEmpty())
		})

		It("reads members of a missing class without taking the write lock", func() {
			inst := missingClass.Wrap(jnibind.Wrap(env.NewLocalRef(vm.Class("test/Widget").New())))

			_, err := missingField.Get(ctx, inst)
			Expect(err).To(MatchError(jnibind.ErrUnresolved))

			release := jnibind.HoldMemberEntry(engine, missingField)
			defer release()

			done := make(chan error, 1)
			go func() {
				_, err := missingField.Get(ctx, inst)
				done <- err
			}()
			Eventually(done).Should(Receive(MatchError(jnibind.ErrUnresolved)))
		})

		It("keeps one cache entry per declaration", func() {
			inst := widgetClass.Wrap(jnibind.Wrap(env.NewLocalRef(vm.Class("test/Widget").New())))

			for i := 0; i < 3; i++ {
				_, err := widgetCount.Get(ctx, inst)
				Expect(err).To(BeNil())
				_, err = widgetAdd.Call(ctx, inst, int32(1))
				Expect(err).To(BeNil())
				_, err = widgetTotal.GetStatic(ctx)
				Expect(err).To(BeNil())
			}

			classes, members := engine.CacheSize()
			Expect(classes).To(Equal(1))
			Expect(members).To(Equal(3))
		})

		It("caches a failed member lookup", func() {
			inst := widgetClass.Wrap(jnibind.Wrap(env.NewLocalRef(vm.Class("test/Widget").New())))

			_, err := widgetMissing.Get(ctx, inst)
			Expect(err).To(MatchError(jnibind.ErrUnresolved))
			Expect(err.Error()).To(ContainSubstring("failed to find fieldID: missing I (in test/Widget)"))

			_, err = widgetMissing.Get(ctx, inst)
			Expect(err).To(MatchError(jnibind.ErrUnresolved))
			Expect(vm.Lookups("field test/Widget.missing:I")).To(Equal(1))
			Expect(env.PendingException()).To(BeEmpty())
		})

		It("resolves concurrently with a single lookup", func() {
			const threads = 16

			var wg sync.WaitGroup
			ids := make([]uintptr, threads)
			errs := make([]error, threads)
			start := make(chan struct{})
			for i := 0; i < threads; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					threadCtx := engine.Attach(context.Background(), vm.NewEnv())
					<-start
					ids[i], errs[i] = widgetAdd.ID(threadCtx)
				}(i)
			}
			close(start)
			wg.Wait()

			for i := 0; i < threads; i++ {
				Expect(errs[i]).To(BeNil())
				Expect(ids[i]).ToNot(BeZero())
				Expect(ids[i]).To(Equal(ids[0]))
			}
			Expect(vm.Lookups("class test/Widget")).To(Equal(1))
			Expect(vm.Lookups("method test/Widget.add:(I)I")).To(Equal(1))
		})

		It("keeps resolution state per engine", func() {
			other := jnibind.CreateEngine(nil)
			other.Init()
			otherCtx := other.Attach(context.Background(), env)

			_, err := widgetClass.Resolve(ctx)
			Expect(err).To(BeNil())
			_, err = widgetClass.Resolve(otherCtx)
			Expect(err).To(BeNil())
			Expect(vm.Lookups("class test/Widget")).To(Equal(2))
		})

		It("panics with the panic policy", func() {
			strict := jnibind.CreateEngine(jnibind.NewConfig().SetResolvePolicy(jnibind.ResolvePanic))
			strict.Init()
			strictCtx := strict.Attach(context.Background(), env)

			Expect(func() {
				_, _ = missingClass.Resolve(strictCtx)
			}).To(PanicWith(BeAssignableToTypeOf(&jnibind.ResolutionError{})))
		})
	})
})
