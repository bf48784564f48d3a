package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"edusahasra/internal/adapters/http/middleware"
	"edusahasra/internal/adapters/storage/draft"
	"edusahasra/internal/application/forms"
	"edusahasra/internal/application/orchestrators"
	"edusahasra/internal/domain/school"
	"edusahasra/internal/domain/session"
	"edusahasra/internal/domain/upload"
)

// roleTitles are the login page headings per role.
var roleTitles = map[string]string{
	session.RoleDonor:  "Donor Login",
	session.RoleSchool: "School Login",
	session.RoleAdmin:  "Admin Login",
}

// handleLogin returns the GET/POST handler for one role's login page.
func handleLogin(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			renderTemplate(w, r, "login.html", map[string]any{
				"Title": roleTitles[role],
				"Role":  role,
				"Email": "",
			})
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		if errs := forms.CheckLogin(email, password); errs != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"Title":  roleTitles[role],
				"Role":   role,
				"Errors": errs,
				"Email":  email,
			})
			return
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Role:     role,
			Email:    email,
			Password: password,
		}, orchestrators.LoginDeps{
			API:      bound(r),
			Sessions: sessions(r),
			Log:      appLog,
		})
		if errors.Is(err, orchestrators.ErrInvalidCredentials) {
			renderTemplate(w, r, "login.html", map[string]any{
				"Title":        roleTitles[role],
				"Role":         role,
				"FlashKind":    "error",
				"FlashMessage": "Invalid email or password.",
				"Email":        email,
			})
			return
		}
		if err != nil {
			failAction(w, r, err, session.LoginRoute(role))
			return
		}

		http.Redirect(w, r, result.HomePath, http.StatusSeeOther)
	}
}

// handleLogout handles POST /logout. The form names which role logs out;
// other roles' sessions in the same browser are untouched.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	role := r.FormValue("role")
	if !session.IsValidRole(role) {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	loginPath, err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{Role: role},
		orchestrators.LogoutDeps{Sessions: sessions(r), Log: appLog})
	if err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// handleDonorRegister handles GET and POST /donor-register.
func handleDonorRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "donor_register.html", map[string]any{
			"Title":  "Create a Donor Account",
			"Fields": map[string]string{},
		})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	fields := map[string]string{
		"fullName":        strings.TrimSpace(r.FormValue("fullName")),
		"email":           strings.TrimSpace(r.FormValue("email")),
		"phone":           strings.TrimSpace(r.FormValue("phone")),
		"password":        r.FormValue("password"),
		"confirmPassword": r.FormValue("confirmPassword"),
	}

	result, errs, err := orchestrators.ExecuteRegisterDonor(r.Context(),
		orchestrators.RegisterDonorInput{Fields: fields},
		orchestrators.RegisterDonorDeps{API: bound(r), Sessions: sessions(r), Log: appLog})
	if err != nil {
		failAction(w, r, err, "/donor-register")
		return
	}
	if errs != nil {
		delete(fields, "password")
		delete(fields, "confirmPassword")
		renderTemplate(w, r, "donor_register.html", map[string]any{
			"Title":  "Create a Donor Account",
			"Errors": errs,
			"Fields": fields,
		})
		return
	}

	setFlash(w, "success", "Welcome to Edusahasra!")
	http.Redirect(w, r, result.HomePath, http.StatusSeeOther)
}

const maxWizardUpload = upload.MaxFileSize + 512*1024 // form overhead

// handleSchoolRegister drives the five-step school signup wizard. The
// draft lives server-side keyed by the browser id, so a page reload or a
// detour never loses progress.
func handleSchoolRegister(w http.ResponseWriter, r *http.Request) {
	wiz := forms.SchoolRegistration()
	browserID := middleware.BrowserID(r.Context())
	ctx := r.Context()

	d, ok, err := stores.DraftStore.GetDraft(ctx, browserID, draft.KindSchoolRegister)
	if err != nil {
		internalError(w, err)
		return
	}
	if !ok {
		d = draft.Draft{BrowserID: browserID, Kind: draft.KindSchoolRegister, Step: 1, Fields: map[string]string{}}
	}
	if d.Fields == nil {
		d.Fields = map[string]string{}
	}

	if r.Method == http.MethodGet {
		renderSchoolRegisterStep(w, r, wiz, d, nil)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Uploads arrive multipart; every other action is a plain form post.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxWizardUpload); err != nil {
			setFlash(w, "error", "That file is too large. Documents must be under 5 MB.")
			http.Redirect(w, r, "/school-register", http.StatusSeeOther)
			return
		}
	} else if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	step, stepNum := wiz.StepAt(d.Step)
	submitted := map[string]string{}
	for key := range r.Form {
		submitted[key] = strings.TrimSpace(r.FormValue(key))
	}

	// The remove buttons carry the staged file id as their value.
	if fileID := r.FormValue("remove"); fileID != "" {
		if err := stores.DraftStore.RemoveFile(ctx, browserID, fileID); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/school-register", http.StatusSeeOther)
		return
	}

	switch r.FormValue("action") {
	case "back":
		// merge without validating so typed values survive going back
		d.Fields = wiz.Merge(d.Fields, step, submitted)
		d.Step = wiz.Back(stepNum)
		if err := stores.DraftStore.SaveDraft(ctx, d); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/school-register", http.StatusSeeOther)

	case "next":
		d.Fields = wiz.Merge(d.Fields, step, submitted)
		syncDocumentCount(ctx, &d)
		next, errs := wiz.Advance(d.Fields, stepNum)
		d.Step = next
		if err := stores.DraftStore.SaveDraft(ctx, d); err != nil {
			internalError(w, err)
			return
		}
		if errs != nil {
			renderSchoolRegisterStep(w, r, wiz, d, errs)
			return
		}
		http.Redirect(w, r, "/school-register", http.StatusSeeOther)

	case "upload":
		handleSchoolDocumentUpload(w, r, d)

	case "submit":
		msg, errs, err := orchestrators.ExecuteRegisterSchool(ctx,
			orchestrators.RegisterSchoolInput{BrowserID: browserID},
			orchestrators.RegisterSchoolDeps{API: bound(r), Drafts: stores.DraftStore, Log: appLog})
		if errors.Is(err, orchestrators.ErrNoDraft) {
			http.Redirect(w, r, "/school-register", http.StatusSeeOther)
			return
		}
		if err != nil {
			failAction(w, r, err, "/school-register")
			return
		}
		if errs != nil {
			renderSchoolRegisterStep(w, r, wiz, d, errs)
			return
		}
		if msg == "" {
			msg = "Registration received. We'll email you once your school is verified."
		}
		setFlash(w, "success", msg)
		http.Redirect(w, r, "/school-login", http.StatusSeeOther)

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// handleSchoolDocumentUpload stages one verification document.
func handleSchoolDocumentUpload(w http.ResponseWriter, r *http.Request, d draft.Draft) {
	ctx := r.Context()

	file, header, err := r.FormFile("document")
	if err != nil {
		setFlash(w, "error", "Choose a file to upload.")
		http.Redirect(w, r, "/school-register", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if err := upload.Validate(upload.KindDocument, header.Filename, header.Header.Get("Content-Type"), header.Size); err != nil {
		setFlash(w, "error", uploadErrorMessage(err))
		http.Redirect(w, r, "/school-register", http.StatusSeeOther)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize))
	if err != nil {
		internalError(w, err)
		return
	}

	staged := draft.StagedFile{
		ID:          generateID(),
		BrowserID:   d.BrowserID,
		Kind:        draft.KindSchoolRegister,
		Field:       "documents",
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if err := stores.DraftStore.AddFile(ctx, staged, data); err != nil {
		internalError(w, err)
		return
	}
	if d.Step != 4 {
		d.Step = 4
		if err := stores.DraftStore.SaveDraft(ctx, d); err != nil {
			internalError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/school-register", http.StatusSeeOther)
}

// syncDocumentCount mirrors the staged-file count into the draft so the
// documents step can gate on it.
func syncDocumentCount(ctx context.Context, d *draft.Draft) {
	files, err := stores.DraftStore.ListFiles(ctx, d.BrowserID, d.Kind)
	if err != nil {
		return
	}
	d.Fields["documentCount"] = strconv.Itoa(len(files))
}

func renderSchoolRegisterStep(w http.ResponseWriter, r *http.Request, wiz *forms.Wizard, d draft.Draft, errs forms.Errors) {
	step, stepNum := wiz.StepAt(d.Step)

	var files []draft.StagedFile
	if stepNum >= 4 {
		var err error
		files, err = stores.DraftStore.ListFiles(r.Context(), d.BrowserID, draft.KindSchoolRegister)
		if err != nil {
			internalError(w, err)
			return
		}
	}

	renderTemplate(w, r, "school_register.html", map[string]any{
		"Title":     "Register Your School",
		"Step":      step,
		"StepNum":   stepNum,
		"StepCount": wiz.StepCount(),
		"Fields":    d.Fields,
		"Files":     files,
		"Errors":    errs,
		"Districts": school.Districts,
	})
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return "That file is too large. Documents must be under 5 MB."
	case errors.Is(err, upload.ErrBadType):
		return "That file type isn't accepted. Upload a PDF or an image."
	default:
		return "That file couldn't be uploaded."
	}
}
