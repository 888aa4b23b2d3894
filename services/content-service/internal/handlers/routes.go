package handlers

import "net/http"

func Register(mux *http.ServeMux, public *PublicHandler, admin *AdminHandler) {
	mux.HandleFunc(practiceAreasPath, public.PracticeAreas)
	mux.HandleFunc(practiceAreasPath+"/", public.PracticeAreas)
	mux.HandleFunc(attorneysPath, public.Attorneys)
	mux.HandleFunc(attorneysPath+"/", public.Attorneys)
	mux.HandleFunc(blogsPath, public.Blogs)
	mux.HandleFunc(blogsPath+"/", public.Blogs)
	mux.HandleFunc(contactPath, public.Contact)

	mux.HandleFunc("/api/v1/admin/content/practice-areas", admin.CreatePracticeArea)
	mux.HandleFunc("/api/v1/admin/content/practice-areas/images", admin.AddPracticeAreaImage)
	mux.HandleFunc("/api/v1/admin/content/attorneys", admin.CreateAttorney)
	mux.HandleFunc("/api/v1/admin/content/blogs", admin.CreateBlogPost)
	mux.HandleFunc("/api/v1/admin/content/contact-messages", admin.ContactMessages)
	mux.HandleFunc("/api/v1/admin/content/contact-messages/read", admin.MarkContactRead)
}
